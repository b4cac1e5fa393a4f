// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

// ErrEncryptionKeyInvalid is returned by store constructors when the
// configured secret key is not a 32-byte AES-256 key.
var ErrEncryptionKeyInvalid = errors.New("credentials secret key must be 32 bytes")

// CredentialStore defines the driven port for current-format credential
// records keyed by subject id. The adapter layer is responsible for
// encryption/decryption; this interface operates on plaintext values at the
// domain boundary.
type CredentialStore interface {
	// Get returns the record for subjectID, or (nil, nil) if none exists.
	Get(ctx context.Context, subjectID string) (*model.Credential, error)

	// Put writes the full record, replacing any previous one. Field-level
	// merging is the caller's responsibility.
	Put(ctx context.Context, cred model.Credential) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, subjectID string) error
}

// LegacyCredentialStore defines the driven port for the legacy credential
// namespace. Records are only read, seeded by operators, and deleted after
// migration.
type LegacyCredentialStore interface {
	// Get returns the legacy record for subjectID, or (nil, nil) if none exists.
	Get(ctx context.Context, subjectID string) (*model.LegacyCredential, error)
	Put(ctx context.Context, cred model.LegacyCredential) error
	Delete(ctx context.Context, subjectID string) error
}

// ProfileStore defines the driven port for user profile records.
type ProfileStore interface {
	// Get returns the profile for subjectID, or (nil, nil) if none exists.
	Get(ctx context.Context, subjectID string) (*model.Profile, error)
	Put(ctx context.Context, profile model.Profile) error
}
