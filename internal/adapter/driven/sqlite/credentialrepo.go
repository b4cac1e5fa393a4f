package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/sealer"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CredentialStore       = (*CredentialRepo)(nil)
	_ driven.LegacyCredentialStore = (*LegacyCredentialRepo)(nil)
)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// API keys are sealed before write and opened after read.
type CredentialRepo struct {
	db     *DB
	sealer *sealer.Sealer
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(db *DB, s *sealer.Sealer) *CredentialRepo {
	return &CredentialRepo{db: db, sealer: s}
}

// Get retrieves the credential for subjectID. Returns (nil, nil) if none exists.
func (r *CredentialRepo) Get(ctx context.Context, subjectID string) (*model.Credential, error) {
	const query = `SELECT api_key, external_username, created_at, updated_at, migrated_from_legacy
		FROM credentials WHERE subject_id = ?`

	var (
		sealed               string
		createdAt, updatedAt sql.NullString
		migrated             bool
	)
	cred := model.Credential{SubjectID: subjectID}

	err := r.db.Reader.QueryRowContext(ctx, query, subjectID).
		Scan(&sealed, &cred.ExternalUsername, &createdAt, &updatedAt, &migrated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", subjectID, err)
	}

	cred.APIKey, err = r.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential %q: %w", subjectID, err)
	}
	cred.MigratedFromLegacy = migrated

	if cred.CreatedAt, err = parseNullTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for credential %q: %w", subjectID, err)
	}
	if cred.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for credential %q: %w", subjectID, err)
	}

	return &cred, nil
}

// Put stores or replaces the credential record for cred.SubjectID.
func (r *CredentialRepo) Put(ctx context.Context, cred model.Credential) error {
	sealed, err := r.sealer.Seal(cred.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt credential %q: %w", cred.SubjectID, err)
	}

	const query = `INSERT INTO credentials
		(subject_id, api_key, external_username, created_at, updated_at, migrated_from_legacy)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			api_key = excluded.api_key,
			external_username = excluded.external_username,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			migrated_from_legacy = excluded.migrated_from_legacy`

	_, err = r.db.Writer.ExecContext(ctx, query,
		cred.SubjectID,
		sealed,
		cred.ExternalUsername,
		formatTime(cred.CreatedAt),
		formatTime(cred.UpdatedAt),
		cred.MigratedFromLegacy,
	)
	if err != nil {
		return fmt.Errorf("put credential %q: %w", cred.SubjectID, err)
	}
	return nil
}

// Delete removes the credential for subjectID. Missing rows are not an error.
func (r *CredentialRepo) Delete(ctx context.Context, subjectID string) error {
	const query = `DELETE FROM credentials WHERE subject_id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, subjectID); err != nil {
		return fmt.Errorf("delete credential %q: %w", subjectID, err)
	}
	return nil
}

// LegacyCredentialRepo is the SQLite implementation of the
// LegacyCredentialStore port. Legacy rows predate encryption and are
// read through the sealer so plaintext and sealed values both work.
type LegacyCredentialRepo struct {
	db     *DB
	sealer *sealer.Sealer
}

// NewLegacyCredentialRepo creates a new LegacyCredentialRepo.
func NewLegacyCredentialRepo(db *DB, s *sealer.Sealer) *LegacyCredentialRepo {
	return &LegacyCredentialRepo{db: db, sealer: s}
}

// Get retrieves the legacy record for subjectID. Returns (nil, nil) if none exists.
func (r *LegacyCredentialRepo) Get(ctx context.Context, subjectID string) (*model.LegacyCredential, error) {
	const query = `SELECT api_key, calcom_username FROM legacy_credentials WHERE subject_id = ?`

	var stored string
	cred := model.LegacyCredential{SubjectID: subjectID}
	err := r.db.Reader.QueryRowContext(ctx, query, subjectID).Scan(&stored, &cred.CalComUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get legacy credential %q: %w", subjectID, err)
	}

	if cred.APIKey, err = r.sealer.Open(stored); err != nil {
		return nil, fmt.Errorf("decrypt legacy credential %q: %w", subjectID, err)
	}
	return &cred, nil
}

// Put stores or replaces a legacy record.
func (r *LegacyCredentialRepo) Put(ctx context.Context, cred model.LegacyCredential) error {
	sealed, err := r.sealer.Seal(cred.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt legacy credential %q: %w", cred.SubjectID, err)
	}

	const query = `INSERT OR REPLACE INTO legacy_credentials (subject_id, api_key, calcom_username) VALUES (?, ?, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, query, cred.SubjectID, sealed, cred.CalComUsername); err != nil {
		return fmt.Errorf("put legacy credential %q: %w", cred.SubjectID, err)
	}
	return nil
}

// Delete removes the legacy record for subjectID.
func (r *LegacyCredentialRepo) Delete(ctx context.Context, subjectID string) error {
	const query = `DELETE FROM legacy_credentials WHERE subject_id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, subjectID); err != nil {
		return fmt.Errorf("delete legacy credential %q: %w", subjectID, err)
	}
	return nil
}

// formatTime renders t for storage. Zero times are stored as NULL.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseNullTime parses a nullable stored timestamp.
func parseNullTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return parseTime(s.String)
}

// parseTime accepts the formats SQLite and this package have written.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
