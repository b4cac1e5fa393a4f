package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeAddr(t *testing.T) {
	tests := []struct {
		name string
		host string
		port string
		want string
	}{
		{name: "defaults", want: "127.0.0.1:4000"},
		{name: "bind all", host: "0.0.0.0", port: "8080", want: "127.0.0.1:8080"},
		{name: "ipv6 bind all", host: "::", port: "8080", want: "127.0.0.1:8080"},
		{name: "explicit host", host: "10.0.0.5", port: "4001", want: "10.0.0.5:4001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, probeAddr(tt.host, tt.port))
		})
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "serving", status: http.StatusOK, body: "Cal.com API server is running"},
		{name: "error status", status: http.StatusServiceUnavailable, body: "Cal.com API server is running", wantErr: true},
		{name: "wrong service", status: http.StatusOK, body: "hello", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := probe(context.Background(), srv.Client(), srv.URL+"/")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Error(t, probe(context.Background(), http.DefaultClient, url))
}
