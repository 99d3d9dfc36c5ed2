package models

import (
	"time"

	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

// Audit holds the bookkeeping columns shared by every mutable entity.
// CreatedBy and UpdatedBy are nullable because the referenced user may be removed.
type Audit struct {
	CreatedBy *int64    `json:"createdBy" db:"created_by"`
	UpdatedBy *int64    `json:"updatedBy" db:"updated_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	IsDeleted bool      `json:"isDeleted" db:"is_deleted"`
}

// RequireActor rejects anonymous mutations
func RequireActor(actor *Actor) error {
	if actor == nil || actor.UserID <= 0 {
		return apperrors.ErrAuthenticationRequired
	}
	return nil
}

// StampCreate records the creator. Creator and creation time never change afterwards.
func (a *Audit) StampCreate(actor *Actor, now time.Time) {
	a.CreatedBy = actor.ID()
	a.UpdatedBy = actor.ID()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.IsDeleted = false
}

// StampUpdate records the updater
func (a *Audit) StampUpdate(actor *Actor, now time.Time) {
	a.UpdatedBy = actor.ID()
	a.UpdatedAt = now
}

// MarkDeleted flags the row as deleted instead of removing it
func (a *Audit) MarkDeleted(actor *Actor, now time.Time) {
	a.StampUpdate(actor, now)
	a.IsDeleted = true
}
