package model

import "encoding/json"

// UpstreamRequest describes a single call to the scheduling API on behalf of
// a subject. Query values that are empty are not sent.
type UpstreamRequest struct {
	Method   string
	Endpoint string // path relative to the API base, e.g. "/bookings"
	APIKey   string
	Query    []QueryParam
	Body     any // JSON-encoded when non-nil
}

// QueryParam is an ordered query string entry.
type QueryParam struct {
	Name  string
	Value string
}

// UpstreamResponse is relayed verbatim to the caller. Body is always valid
// JSON; unparseable upstream bodies become an empty object.
type UpstreamResponse struct {
	StatusCode int
	Body       json.RawMessage
}
