package model

import "time"

// Profile is the per-subject user record maintained by the client
// application. Only the administrator flags matter here. Two field names
// have been used for the flag over time: "admin" and "isAdmin".
type Profile struct {
	SubjectID string
	Email     string
	Admin     *bool
	IsAdmin   *bool
	UpdatedAt time.Time
}

// HasAdminCapability reports whether either administrator flag is set to
// true. The flags are checked in the order admin, isAdmin.
func (p *Profile) HasAdminCapability() bool {
	if p == nil {
		return false
	}
	if p.Admin != nil && *p.Admin {
		return true
	}
	return p.IsAdmin != nil && *p.IsAdmin
}
