package models

// Actor is the authenticated identity performing a request.
// A nil *Actor is an anonymous caller.
type Actor struct {
	UserID  int64
	IsStaff bool
}

// CanSeeDeleted reports whether soft-deleted rows are visible to the actor
func (a *Actor) CanSeeDeleted() bool {
	return a != nil && a.IsStaff
}

// ID returns a pointer suitable for the nullable audit columns
func (a *Actor) ID() *int64 {
	if a == nil {
		return nil
	}
	id := a.UserID
	return &id
}
