package application

import (
	"context"
	"maps"
	"net/http"
	"net/url"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// SchedulingService turns proxy operations into upstream scheduling API
// calls made with the effective subject's stored credential. It shapes
// requests only; upstream responses are returned untouched.
type SchedulingService struct {
	credentials *CredentialService
	api         driven.SchedulingAPI
}

// NewSchedulingService creates a new SchedulingService.
func NewSchedulingService(credentials *CredentialService, api driven.SchedulingAPI) *SchedulingService {
	return &SchedulingService{
		credentials: credentials,
		api:         api,
	}
}

// AvailabilityQuery holds the inputs of ListAvailability.
type AvailabilityQuery struct {
	DateFrom    string
	DateTo      string
	EventTypeID string
}

// ListEventTypes lists the subject's event types.
func (s *SchedulingService) ListEventTypes(ctx context.Context, subjectID string) (*model.UpstreamResponse, error) {
	return s.call(ctx, subjectID, func(cred *model.Credential) model.UpstreamRequest {
		return model.UpstreamRequest{
			Method:   http.MethodGet,
			Endpoint: "/event-types",
			Query:    []model.QueryParam{{Name: "username", Value: cred.ExternalUsername}},
		}
	})
}

// ListBookings lists bookings in [startTime, endTime]. The range is sent
// under both naming conventions the upstream API has accepted.
func (s *SchedulingService) ListBookings(ctx context.Context, subjectID, startTime, endTime string) (*model.UpstreamResponse, error) {
	return s.call(ctx, subjectID, func(cred *model.Credential) model.UpstreamRequest {
		return model.UpstreamRequest{
			Method:   http.MethodGet,
			Endpoint: "/bookings",
			Query: []model.QueryParam{
				{Name: "username", Value: cred.ExternalUsername},
				{Name: "startTime", Value: startTime},
				{Name: "endTime", Value: endTime},
				{Name: "start", Value: startTime},
				{Name: "end", Value: endTime},
			},
		}
	})
}

// CreateBooking submits bookingRequest upstream. The stored username is
// added when the caller did not provide one; bookingRequest itself is not
// modified.
func (s *SchedulingService) CreateBooking(ctx context.Context, subjectID string, bookingRequest map[string]any) (*model.UpstreamResponse, error) {
	return s.call(ctx, subjectID, func(cred *model.Credential) model.UpstreamRequest {
		body := maps.Clone(bookingRequest)
		if body == nil {
			body = map[string]any{}
		}
		if _, ok := body["username"]; !ok {
			body["username"] = cred.ExternalUsername
		}
		return model.UpstreamRequest{
			Method:   http.MethodPost,
			Endpoint: "/bookings",
			Body:     body,
		}
	})
}

// CancelBooking cancels bookingID, passing reason along when given.
func (s *SchedulingService) CancelBooking(ctx context.Context, subjectID, bookingID, reason string) (*model.UpstreamResponse, error) {
	return s.call(ctx, subjectID, func(_ *model.Credential) model.UpstreamRequest {
		return model.UpstreamRequest{
			Method:   http.MethodDelete,
			Endpoint: "/bookings/" + url.PathEscape(bookingID),
			Query:    []model.QueryParam{{Name: "reason", Value: reason}},
		}
	})
}

// ListAvailability returns availability for the subject between the given dates.
func (s *SchedulingService) ListAvailability(ctx context.Context, subjectID string, q AvailabilityQuery) (*model.UpstreamResponse, error) {
	return s.call(ctx, subjectID, func(cred *model.Credential) model.UpstreamRequest {
		return model.UpstreamRequest{
			Method:   http.MethodGet,
			Endpoint: "/availability",
			Query: []model.QueryParam{
				{Name: "username", Value: cred.ExternalUsername},
				{Name: "dateFrom", Value: q.DateFrom},
				{Name: "dateTo", Value: q.DateTo},
				{Name: "eventTypeId", Value: q.EventTypeID},
			},
		}
	})
}

// ListSchedules lists the subject's schedules.
func (s *SchedulingService) ListSchedules(ctx context.Context, subjectID string) (*model.UpstreamResponse, error) {
	return s.call(ctx, subjectID, func(cred *model.Credential) model.UpstreamRequest {
		return model.UpstreamRequest{
			Method:   http.MethodGet,
			Endpoint: "/schedules",
			Query:    []model.QueryParam{{Name: "username", Value: cred.ExternalUsername}},
		}
	})
}

// call loads the subject's credential, builds the request and issues it.
func (s *SchedulingService) call(
	ctx context.Context,
	subjectID string,
	build func(cred *model.Credential) model.UpstreamRequest,
) (*model.UpstreamResponse, error) {
	cred, err := s.credentials.RequireLoaded(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	req := build(cred)
	req.APIKey = cred.APIKey
	return s.api.Call(ctx, req)
}
