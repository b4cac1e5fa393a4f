package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	mu      sync.Mutex
	records map[string]model.Credential
	getErr  error
	putErr  error
	gets    []string
	puts    []model.Credential
	deletes []string
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{records: map[string]model.Credential{}}
}

func (m *mockCredentialStore) Get(_ context.Context, subjectID string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, subjectID)
	if m.getErr != nil {
		return nil, m.getErr
	}
	cred, ok := m.records[subjectID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *mockCredentialStore) Put(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts = append(m.puts, cred)
	m.records[cred.SubjectID] = cred
	return nil
}

func (m *mockCredentialStore) Delete(_ context.Context, subjectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, subjectID)
	delete(m.records, subjectID)
	return nil
}

type mockLegacyStore struct {
	records   map[string]model.LegacyCredential
	gets      []string
	deletes   []string
	deleteErr error
}

func newMockLegacyStore() *mockLegacyStore {
	return &mockLegacyStore{records: map[string]model.LegacyCredential{}}
}

func (m *mockLegacyStore) Get(_ context.Context, subjectID string) (*model.LegacyCredential, error) {
	m.gets = append(m.gets, subjectID)
	cred, ok := m.records[subjectID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *mockLegacyStore) Put(_ context.Context, cred model.LegacyCredential) error {
	m.records[cred.SubjectID] = cred
	return nil
}

func (m *mockLegacyStore) Delete(_ context.Context, subjectID string) error {
	m.deletes = append(m.deletes, subjectID)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.records, subjectID)
	return nil
}

type mockProfileStore struct {
	profiles map[string]model.Profile
	err      error
	gets     []string
}

func (m *mockProfileStore) Get(_ context.Context, subjectID string) (*model.Profile, error) {
	m.gets = append(m.gets, subjectID)
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[subjectID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockProfileStore) Put(_ context.Context, profile model.Profile) error {
	if m.profiles == nil {
		m.profiles = map[string]model.Profile{}
	}
	m.profiles[profile.SubjectID] = profile
	return nil
}

type mockSchedulingAPI struct {
	calls []model.UpstreamRequest
	resp  *model.UpstreamResponse
	err   error
}

func (m *mockSchedulingAPI) Call(_ context.Context, req model.UpstreamRequest) (*model.UpstreamResponse, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &model.UpstreamResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	return m.resp, nil
}

var errStore = errors.New("store unavailable")

func boolPtr(b bool) *bool { return &b }
