// Command healthcheck probes the local calcom-server liveness endpoint and
// exits non-zero when it is not serving. It is intended for container
// HEALTHCHECK directives in images without a shell.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	probeTimeout = 2 * time.Second
	livenessBody = "Cal.com API server is running"
)

func main() {
	addr := probeAddr(os.Getenv("LISTEN_HOST"), os.Getenv("PORT"))
	if err := probe(context.Background(), &http.Client{Timeout: probeTimeout}, "http://"+addr+"/"); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

// probe requires a 200 response carrying the liveness message.
func probe(ctx context.Context, client *http.Client, url string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if !strings.Contains(string(body), livenessBody) {
		return fmt.Errorf("unexpected body %q", body)
	}
	return nil
}

// probeAddr targets loopback when the server binds every interface, since
// the probe runs inside the same container.
func probeAddr(host, port string) string {
	if port == "" {
		port = "4000"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
