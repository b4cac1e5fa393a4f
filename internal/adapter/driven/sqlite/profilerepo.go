package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProfileStore = (*ProfileRepo)(nil)

// ProfileRepo is the SQLite implementation of the ProfileStore port interface.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo backed by the given DB.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get retrieves the profile for subjectID. Returns (nil, nil) if none exists.
func (r *ProfileRepo) Get(ctx context.Context, subjectID string) (*model.Profile, error) {
	const query = `SELECT email, admin, is_admin, updated_at FROM profiles WHERE subject_id = ?`

	var (
		admin, isAdmin sql.NullBool
		updatedAt      string
	)
	profile := model.Profile{SubjectID: subjectID}

	err := r.db.Reader.QueryRowContext(ctx, query, subjectID).Scan(&profile.Email, &admin, &isAdmin, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", subjectID, err)
	}

	if admin.Valid {
		profile.Admin = &admin.Bool
	}
	if isAdmin.Valid {
		profile.IsAdmin = &isAdmin.Bool
	}
	if profile.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for profile %q: %w", subjectID, err)
	}

	return &profile, nil
}

// Put stores or replaces the profile. Nil flags are stored as NULL.
func (r *ProfileRepo) Put(ctx context.Context, profile model.Profile) error {
	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	const query = `INSERT INTO profiles (subject_id, email, admin, is_admin, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			email = excluded.email,
			admin = excluded.admin,
			is_admin = excluded.is_admin,
			updated_at = excluded.updated_at`

	_, err := r.db.Writer.ExecContext(ctx, query,
		profile.SubjectID,
		profile.Email,
		nullBool(profile.Admin),
		nullBool(profile.IsAdmin),
		formatTime(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put profile %q: %w", profile.SubjectID, err)
	}
	return nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
