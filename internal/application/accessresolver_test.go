package application_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/application"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

func TestAccessResolver_Resolve(t *testing.T) {
	profiles := map[string]model.Profile{
		"admin-new":   {SubjectID: "admin-new", IsAdmin: boolPtr(true)},
		"admin-old":   {SubjectID: "admin-old", Admin: boolPtr(true)},
		"admin-mixed": {SubjectID: "admin-mixed", Admin: boolPtr(false), IsAdmin: boolPtr(true)},
		"mentee":      {SubjectID: "mentee", Admin: boolPtr(false)},
		"no-flags":    {SubjectID: "no-flags", Email: "x@example.com"},
	}

	tests := []struct {
		name        string
		subject     string
		target      string
		want        string
		wantErr     error
		wantLookups int
	}{
		{name: "no target", subject: "mentee", target: "", want: "mentee"},
		{name: "self target", subject: "mentee", target: "mentee", want: "mentee"},
		{name: "admin via isAdmin", subject: "admin-new", target: "mentor-1", want: "mentor-1", wantLookups: 1},
		{name: "admin via admin", subject: "admin-old", target: "mentor-1", want: "mentor-1", wantLookups: 1},
		{name: "either flag true", subject: "admin-mixed", target: "mentor-1", want: "mentor-1", wantLookups: 1},
		{name: "flag false", subject: "mentee", target: "mentor-1", wantErr: application.ErrNotAuthorized, wantLookups: 1},
		{name: "no flags", subject: "no-flags", target: "mentor-1", wantErr: application.ErrNotAuthorized, wantLookups: 1},
		{name: "no profile", subject: "stranger", target: "mentor-1", wantErr: application.ErrNotAuthorized, wantLookups: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockProfileStore{profiles: profiles}
			resolver := application.NewAccessResolver(store, slog.Default())

			got, err := resolver.Resolve(context.Background(), tt.subject, tt.target)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Len(t, store.gets, tt.wantLookups)
			for _, id := range store.gets {
				assert.Equal(t, tt.subject, id, "only the caller's profile may be consulted")
			}
		})
	}
}

func TestAccessResolver_ProfileStoreError(t *testing.T) {
	store := &mockProfileStore{err: errStore}
	resolver := application.NewAccessResolver(store, slog.Default())

	_, err := resolver.Resolve(context.Background(), "a", "b")

	require.ErrorIs(t, err, errStore)
	assert.NotErrorIs(t, err, application.ErrNotAuthorized)
}
