package httphandler

import (
	"context"
	"net/http"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/application"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

// ListEventTypes relays the effective subject's event types.
func (h *Handler) ListEventTypes(w http.ResponseWriter, r *http.Request) {
	var req DelegationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}

	h.forward(w, r, req.MentorUID, h.scheduling.ListEventTypes)
}

// ListBookings relays bookings between startTime and endTime.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	var req ListBookingsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}
	if req.StartTime == "" || req.EndTime == "" {
		writeError(w, http.StatusBadRequest, "startTime and endTime are required")
		return
	}

	h.forward(w, r, req.MentorUID, func(ctx context.Context, subjectID string) (*model.UpstreamResponse, error) {
		return h.scheduling.ListBookings(ctx, subjectID, req.StartTime, req.EndTime)
	})
}

// CreateBooking submits bookingRequest on behalf of the effective subject.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}
	if req.BookingRequest == nil {
		writeError(w, http.StatusBadRequest, "bookingRequest is required")
		return
	}

	h.forward(w, r, req.MentorUID, func(ctx context.Context, subjectID string) (*model.UpstreamResponse, error) {
		return h.scheduling.CreateBooking(ctx, subjectID, req.BookingRequest)
	})
}

// CancelBooking cancels a booking by id.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req CancelBookingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}
	bookingID, ok := scalarString(req.BookingID)
	if !ok {
		writeError(w, http.StatusBadRequest, "bookingId is required")
		return
	}

	h.forward(w, r, req.MentorUID, func(ctx context.Context, subjectID string) (*model.UpstreamResponse, error) {
		return h.scheduling.CancelBooking(ctx, subjectID, bookingID, req.Reason)
	})
}

// ListAvailability relays availability between dateFrom and dateTo.
func (h *Handler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}
	if req.DateFrom == "" || req.DateTo == "" {
		writeError(w, http.StatusBadRequest, "dateFrom and dateTo are required")
		return
	}

	eventTypeID, _ := scalarString(req.EventTypeID)
	q := application.AvailabilityQuery{
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		EventTypeID: eventTypeID,
	}

	h.forward(w, r, req.MentorUID, func(ctx context.Context, subjectID string) (*model.UpstreamResponse, error) {
		return h.scheduling.ListAvailability(ctx, subjectID, q)
	})
}

// ListSchedules relays the effective subject's schedules.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	var req DelegationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}

	h.forward(w, r, req.MentorUID, h.scheduling.ListSchedules)
}
