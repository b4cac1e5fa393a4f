package application

import "errors"

var (
	// ErrNotAuthorized is returned when a non-administrator asks to act on
	// another subject's credential.
	ErrNotAuthorized = errors.New("not authorized to access another user's credentials")

	// ErrCredentialNotConfigured is returned when the effective subject has
	// no usable stored credential.
	ErrCredentialNotConfigured = errors.New("cal.com credentials not configured for this user")
)
