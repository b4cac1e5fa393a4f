package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errInvalidBody is reported for bodies that are not a JSON object.
var errInvalidBody = errors.New("invalid request body")

// decodeBody decodes an optional JSON object body into v. An empty body
// leaves v untouched so required-field validation reports what is missing.
// Numbers decode as json.Number to keep ids exact. Anything after the
// first value is rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", errInvalidBody)
	}
	return nil
}

// scalarString converts a decoded JSON string or number to its string form.
// It reports false for anything else, including empty strings.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
