package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// AccessResolver decides whose credential a request operates on. A subject
// always acts on its own credential; only administrators may name another
// subject as the target.
type AccessResolver struct {
	profiles driven.ProfileStore
	logger   *slog.Logger
}

// NewAccessResolver creates an AccessResolver backed by the given profile store.
func NewAccessResolver(profiles driven.ProfileStore, logger *slog.Logger) *AccessResolver {
	return &AccessResolver{
		profiles: profiles,
		logger:   logger,
	}
}

// Resolve returns the effective subject id. An empty targetID, or one equal
// to subjectID, resolves to subjectID without touching the profile store.
// Otherwise subjectID must carry an administrator flag or ErrNotAuthorized
// is returned.
func (r *AccessResolver) Resolve(ctx context.Context, subjectID, targetID string) (string, error) {
	if targetID == "" || targetID == subjectID {
		return subjectID, nil
	}

	profile, err := r.profiles.Get(ctx, subjectID)
	if err != nil {
		return "", fmt.Errorf("load profile %q: %w", subjectID, err)
	}

	if !profile.HasAdminCapability() {
		r.logger.Warn("delegation denied", "subject", subjectID, "target", targetID)
		return "", ErrNotAuthorized
	}

	r.logger.Debug("delegation granted", "subject", subjectID, "target", targetID)
	return targetID, nil
}
