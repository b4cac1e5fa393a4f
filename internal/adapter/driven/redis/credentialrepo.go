package redis

import (
	"context"
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

// credentialDoc is the stored JSON shape of a current-format credential.
type credentialDoc struct {
	APIKey             string    `json:"apiKey"`
	ExternalUsername   string    `json:"externalUsername"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
	UpdatedAt          time.Time `json:"updatedAt,omitzero"`
	MigratedFromLegacy bool      `json:"migratedFromLegacy,omitempty"`
}

// legacyDoc is the stored JSON shape of a legacy credential.
type legacyDoc struct {
	APIKey         string `json:"apiKey"`
	CalComUsername string `json:"calComUsername"`
}

// CredentialRepo is the Redis implementation of the CredentialStore port.
type CredentialRepo struct {
	client *Client
	sealer *sealer.Sealer
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(client *Client, s *sealer.Sealer) *CredentialRepo {
	return &CredentialRepo{client: client, sealer: s}
}

// Get returns the credential for subjectID, or (nil, nil) if none exists.
func (r *CredentialRepo) Get(ctx context.Context, subjectID string) (*model.Credential, error) {
	var doc credentialDoc
	found, err := r.client.getDoc(ctx, credentialPrefix+subjectID, &doc)
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", subjectID, err)
	}
	if !found {
		return nil, nil
	}

	apiKey, err := r.sealer.Open(doc.APIKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential %q: %w", subjectID, err)
	}

	return &model.Credential{
		SubjectID:          subjectID,
		APIKey:             apiKey,
		ExternalUsername:   doc.ExternalUsername,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
		MigratedFromLegacy: doc.MigratedFromLegacy,
	}, nil
}

// Put stores or replaces the credential document.
func (r *CredentialRepo) Put(ctx context.Context, cred model.Credential) error {
	sealed, err := r.sealer.Seal(cred.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt credential %q: %w", cred.SubjectID, err)
	}

	doc := credentialDoc{
		APIKey:             sealed,
		ExternalUsername:   cred.ExternalUsername,
		CreatedAt:          cred.CreatedAt.UTC(),
		UpdatedAt:          cred.UpdatedAt.UTC(),
		MigratedFromLegacy: cred.MigratedFromLegacy,
	}
	if err := r.client.setDoc(ctx, credentialPrefix+cred.SubjectID, doc); err != nil {
		return fmt.Errorf("put credential %q: %w", cred.SubjectID, err)
	}
	return nil
}

// Delete removes the credential document.
func (r *CredentialRepo) Delete(ctx context.Context, subjectID string) error {
	if err := r.client.del(ctx, credentialPrefix+subjectID); err != nil {
		return fmt.Errorf("delete credential %q: %w", subjectID, err)
	}
	return nil
}

// LegacyCredentialRepo is the Redis implementation of the
// LegacyCredentialStore port.
type LegacyCredentialRepo struct {
	client *Client
	sealer *sealer.Sealer
}

// NewLegacyCredentialRepo creates a new LegacyCredentialRepo.
func NewLegacyCredentialRepo(client *Client, s *sealer.Sealer) *LegacyCredentialRepo {
	return &LegacyCredentialRepo{client: client, sealer: s}
}

// Get returns the legacy record for subjectID, or (nil, nil) if none exists.
func (r *LegacyCredentialRepo) Get(ctx context.Context, subjectID string) (*model.LegacyCredential, error) {
	var doc legacyDoc
	found, err := r.client.getDoc(ctx, legacyPrefix+subjectID, &doc)
	if err != nil {
		return nil, fmt.Errorf("get legacy credential %q: %w", subjectID, err)
	}
	if !found {
		return nil, nil
	}

	apiKey, err := r.sealer.Open(doc.APIKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt legacy credential %q: %w", subjectID, err)
	}
	return &model.LegacyCredential{
		SubjectID:      subjectID,
		APIKey:         apiKey,
		CalComUsername: doc.CalComUsername,
	}, nil
}

// Put stores or replaces a legacy document.
func (r *LegacyCredentialRepo) Put(ctx context.Context, cred model.LegacyCredential) error {
	sealed, err := r.sealer.Seal(cred.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt legacy credential %q: %w", cred.SubjectID, err)
	}
	doc := legacyDoc{APIKey: sealed, CalComUsername: cred.CalComUsername}
	if err := r.client.setDoc(ctx, legacyPrefix+cred.SubjectID, doc); err != nil {
		return fmt.Errorf("put legacy credential %q: %w", cred.SubjectID, err)
	}
	return nil
}

// Delete removes the legacy document.
func (r *LegacyCredentialRepo) Delete(ctx context.Context, subjectID string) error {
	if err := r.client.del(ctx, legacyPrefix+subjectID); err != nil {
		return fmt.Errorf("delete legacy credential %q: %w", subjectID, err)
	}
	return nil
}
