package model

import "time"

// Credential holds the Cal.com API key and username a subject has connected.
// SubjectID is the owning identity and never changes once written.
type Credential struct {
	SubjectID          string
	APIKey             string
	ExternalUsername   string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	MigratedFromLegacy bool
}

// Usable reports whether the record can be used for upstream calls. Records
// missing either the API key or the username are treated as absent.
func (c *Credential) Usable() bool {
	return c != nil && c.APIKey != "" && c.ExternalUsername != ""
}

// LegacyCredential is the pre-migration record shape. It lives in its own
// namespace and is deleted once copied into a Credential.
type LegacyCredential struct {
	SubjectID      string
	APIKey         string
	CalComUsername string
}

// Usable reports whether both required legacy fields are present.
func (c *LegacyCredential) Usable() bool {
	return c != nil && c.APIKey != "" && c.CalComUsername != ""
}
