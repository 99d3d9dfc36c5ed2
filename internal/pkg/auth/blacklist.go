package auth

import (
	"context"
	"time"
)

// Blacklist records revoked token identifiers (jti) until they expire.
//
// Revoke must be atomic: when two callers revoke the same jti concurrently
// exactly one of them observes revoked == true.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (revoked bool, err error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
