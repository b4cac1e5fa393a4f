package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

func TestProfileRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)

	profile, err := repo.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestProfileRepo_FlagsRoundTrip(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name      string
		admin     *bool
		isAdmin   *bool
		wantAdmin bool
	}{
		{name: "no flags", wantAdmin: false},
		{name: "admin only", admin: &yes, wantAdmin: true},
		{name: "isAdmin only", isAdmin: &yes, wantAdmin: true},
		{name: "both false", admin: &no, isAdmin: &no, wantAdmin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewProfileRepo(db)
			ctx := context.Background()

			require.NoError(t, repo.Put(ctx, model.Profile{
				SubjectID: "uid-1",
				Email:     "a@example.com",
				Admin:     tt.admin,
				IsAdmin:   tt.isAdmin,
			}))

			profile, err := repo.Get(ctx, "uid-1")
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Equal(t, "a@example.com", profile.Email)
			assert.Equal(t, tt.admin, profile.Admin)
			assert.Equal(t, tt.isAdmin, profile.IsAdmin)
			assert.Equal(t, tt.wantAdmin, profile.HasAdminCapability())
			assert.False(t, profile.UpdatedAt.IsZero())
		})
	}
}

func TestProfileRepo_PutReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()
	yes := true

	require.NoError(t, repo.Put(ctx, model.Profile{SubjectID: "uid-1", IsAdmin: &yes}))
	require.NoError(t, repo.Put(ctx, model.Profile{SubjectID: "uid-1"}))

	profile, err := repo.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Nil(t, profile.IsAdmin)
	assert.False(t, profile.HasAdminCapability())
}
