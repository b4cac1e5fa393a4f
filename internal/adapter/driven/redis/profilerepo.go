package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

var _ driven.ProfileStore = (*ProfileRepo)(nil)

// profileDoc mirrors the user profile document. Both admin flags are kept
// because older documents only carry one of them.
type profileDoc struct {
	Email     string    `json:"email,omitempty"`
	Admin     *bool     `json:"admin,omitempty"`
	IsAdmin   *bool     `json:"isAdmin,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// ProfileRepo is the Redis implementation of the ProfileStore port.
type ProfileRepo struct {
	client *Client
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(client *Client) *ProfileRepo {
	return &ProfileRepo{client: client}
}

// Get returns the profile for subjectID, or (nil, nil) if none exists.
func (r *ProfileRepo) Get(ctx context.Context, subjectID string) (*model.Profile, error) {
	var doc profileDoc
	found, err := r.client.getDoc(ctx, profilePrefix+subjectID, &doc)
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", subjectID, err)
	}
	if !found {
		return nil, nil
	}

	return &model.Profile{
		SubjectID: subjectID,
		Email:     doc.Email,
		Admin:     doc.Admin,
		IsAdmin:   doc.IsAdmin,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Put stores or replaces the profile document.
func (r *ProfileRepo) Put(ctx context.Context, profile model.Profile) error {
	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	doc := profileDoc{
		Email:     profile.Email,
		Admin:     profile.Admin,
		IsAdmin:   profile.IsAdmin,
		UpdatedAt: updatedAt.UTC(),
	}
	if err := r.client.setDoc(ctx, profilePrefix+profile.SubjectID, doc); err != nil {
		return fmt.Errorf("put profile %q: %w", profile.SubjectID, err)
	}
	return nil
}
