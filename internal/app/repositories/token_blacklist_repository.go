package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniadmin/internal/pkg/logger"
)

// TokenBlacklistRepository stores revoked token ids in Postgres
type TokenBlacklistRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewTokenBlacklistRepository creates a new TokenBlacklistRepository
func NewTokenBlacklistRepository(db *pgxpool.Pool) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{
		db:  db,
		now: time.Now,
	}
}

// Revoke blacklists jti. It reports whether this call performed the
// revocation; a token that is already blacklisted is not an error.
func (r *TokenBlacklistRepository) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (bool, error) {
	sql, args, err := psql.Insert("token_blacklist").
		Columns("jti", "user_id", "expires_at", "created_at").
		Values(jti, userID, expiresAt, r.now()).
		Suffix("ON CONFLICT (jti) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build revoke token query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("jti", jti).Int64("userID", userID).Msg("Error executing revoke token query")
		return false, fmt.Errorf("error revoking token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IsRevoked reports whether jti is blacklisted
func (r *TokenBlacklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	sql, args, err := psql.Select("1").
		Prefix("SELECT EXISTS(").
		From("token_blacklist").
		Where(squirrel.Eq{"jti": jti}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build revoked token query: %w", err)
	}

	var revoked bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&revoked); err != nil {
		return false, fmt.Errorf("error checking token blacklist: %w", err)
	}
	return revoked, nil
}

// PurgeExpired removes entries whose token has expired anyway
func (r *TokenBlacklistRepository) PurgeExpired(ctx context.Context) (int64, error) {
	sql, args, err := psql.Delete("token_blacklist").
		Where(squirrel.Lt{"expires_at": r.now()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge blacklist query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error purging token blacklist: %w", err)
	}

	deleted := tag.RowsAffected()
	logger.Info().Int64("deletedCount", deleted).Msg("Purged expired blacklist entries")
	return deleted, nil
}
