package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/metrics"
)

// CredentialService manages per-subject Cal.com credentials on top of the
// current and legacy credential stores.
type CredentialService struct {
	store  driven.CredentialStore
	legacy driven.LegacyCredentialStore
	logger *slog.Logger
}

// NewCredentialService creates a new CredentialService with the required dependencies.
func NewCredentialService(
	store driven.CredentialStore,
	legacy driven.LegacyCredentialStore,
	logger *slog.Logger,
) *CredentialService {
	return &CredentialService{
		store:  store,
		legacy: legacy,
		logger: logger,
	}
}

// Load returns the usable credential for subjectID, or nil when the subject
// has none. When no current-format record exists, a usable legacy record is
// copied into the current store (flagged as migrated) and then deleted from
// the legacy namespace, so migration happens at most once per subject.
func (s *CredentialService) Load(ctx context.Context, subjectID string) (*model.Credential, error) {
	cred, err := s.store.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load credential %q: %w", subjectID, err)
	}
	if cred != nil {
		if !cred.Usable() {
			return nil, nil
		}
		return cred, nil
	}

	return s.migrateLegacy(ctx, subjectID)
}

// migrateLegacy moves a usable legacy record into the current store. The
// current record is written before the legacy one is deleted; a failed
// delete leaves an orphaned legacy record that is never read again.
func (s *CredentialService) migrateLegacy(ctx context.Context, subjectID string) (*model.Credential, error) {
	old, err := s.legacy.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load legacy credential %q: %w", subjectID, err)
	}
	if !old.Usable() {
		return nil, nil
	}

	now := time.Now().UTC()
	cred := model.Credential{
		SubjectID:          subjectID,
		APIKey:             old.APIKey,
		ExternalUsername:   old.CalComUsername,
		CreatedAt:          now,
		UpdatedAt:          now,
		MigratedFromLegacy: true,
	}

	if err := s.store.Put(ctx, cred); err != nil {
		return nil, fmt.Errorf("write migrated credential %q: %w", subjectID, err)
	}
	if err := s.legacy.Delete(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("delete legacy credential %q: %w", subjectID, err)
	}

	metrics.CredentialMigrations.Inc()
	s.logger.Info("migrated legacy credential", "subject", subjectID, "username", cred.ExternalUsername)
	return &cred, nil
}

// RequireLoaded is Load with absence turned into ErrCredentialNotConfigured.
func (s *CredentialService) RequireLoaded(ctx context.Context, subjectID string) (*model.Credential, error) {
	cred, err := s.Load(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrCredentialNotConfigured
	}
	return cred, nil
}

// Store merges apiKey and externalUsername into the subject's record.
// CreatedAt is set only if the record never had one; UpdatedAt is always
// refreshed; MigratedFromLegacy is preserved.
func (s *CredentialService) Store(ctx context.Context, subjectID, apiKey, externalUsername string) (*model.Credential, error) {
	existing, err := s.store.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load credential %q: %w", subjectID, err)
	}

	now := time.Now().UTC()
	cred := model.Credential{SubjectID: subjectID}
	if existing != nil {
		cred = *existing
	}
	cred.APIKey = apiKey
	cred.ExternalUsername = externalUsername
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	if err := s.store.Put(ctx, cred); err != nil {
		return nil, fmt.Errorf("store credential %q: %w", subjectID, err)
	}

	s.logger.Info("stored credential", "subject", subjectID, "username", externalUsername)
	return &cred, nil
}

// Remove deletes the subject's record. Removing a missing record succeeds.
func (s *CredentialService) Remove(ctx context.Context, subjectID string) error {
	if err := s.store.Delete(ctx, subjectID); err != nil {
		return fmt.Errorf("remove credential %q: %w", subjectID, err)
	}
	s.logger.Info("removed credential", "subject", subjectID)
	return nil
}
