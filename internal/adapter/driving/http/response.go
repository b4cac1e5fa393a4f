package httphandler

import (
	"encoding/json"
	"net/http"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	writeRawJSON(w, status, data)
}

// writeRawJSON writes an already-encoded JSON body. Upstream responses are
// relayed through here byte for byte.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// StoreCredentialRequest is the JSON body for POST /tokens. CalComUsername
// is accepted as an alias of ExternalUsername.
type StoreCredentialRequest struct {
	APIKey           string `json:"apiKey"`
	ExternalUsername string `json:"externalUsername"`
	CalComUsername   string `json:"calComUsername"`
}

// StoreCredentialResponse is returned after a credential is saved.
type StoreCredentialResponse struct {
	Success          bool   `json:"success"`
	ExternalUsername string `json:"externalUsername"`
}

// CredentialStatusResponse reports whether the effective subject has a
// usable credential.
type CredentialStatusResponse struct {
	Connected        bool   `json:"connected"`
	ExternalUsername string `json:"externalUsername,omitempty"`
}

// SuccessResponse is the body of operations with no other output.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// DelegationRequest carries the optional target subject shared by every
// proxy operation.
type DelegationRequest struct {
	MentorUID string `json:"mentorUid"`
}

// ListBookingsRequest is the JSON body for POST /calcom/bookings/list.
type ListBookingsRequest struct {
	DelegationRequest
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// CreateBookingRequest is the JSON body for POST /calcom/bookings.
type CreateBookingRequest struct {
	DelegationRequest
	BookingRequest map[string]any `json:"bookingRequest"`
}

// CancelBookingRequest is the JSON body for POST /calcom/bookings/cancel.
// BookingID may be a JSON string or number.
type CancelBookingRequest struct {
	DelegationRequest
	BookingID any    `json:"bookingId"`
	Reason    string `json:"reason"`
}

// AvailabilityRequest is the JSON body for POST /calcom/availability.
// EventTypeID may be a JSON string or number.
type AvailabilityRequest struct {
	DelegationRequest
	DateFrom    string `json:"dateFrom"`
	DateTo      string `json:"dateTo"`
	EventTypeID any    `json:"eventTypeId"`
}
