package httphandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", body: "", want: map[string]any{}},
		{name: "whitespace", body: " \n", want: map[string]any{}},
		{name: "object", body: `{"bookingId":42}`, want: map[string]any{"bookingId": json.Number("42")}},
		{name: "trailing whitespace", body: "{\"reason\":\"r\"}\n", want: map[string]any{"reason": "r"}},
		{name: "trailing text", body: `{"bookingId":"1"} junk`, wantErr: true},
		{name: "trailing object", body: `{"a":1}{"b":2}`, wantErr: true},
		{name: "trailing brace", body: `{"a":1}}`, wantErr: true},
		{name: "truncated", body: `{"a":`, wantErr: true},
		{name: "too large", body: `{"a":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			got := map[string]any{}

			err := decodeBody(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
