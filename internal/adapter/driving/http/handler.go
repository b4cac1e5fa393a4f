package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/application"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// livenessMessage is the plain-text body served on GET /.
const livenessMessage = "Cal.com API server is running"

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	access      *application.AccessResolver
	credentials *application.CredentialService
	scheduling  *application.SchedulingService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	access *application.AccessResolver,
	credentials *application.CredentialService,
	scheduling *application.SchedulingService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		access:      access,
		credentials: credentials,
		scheduling:  scheduling,
		logger:      logger,
	}
}

// readinessTimeout bounds a single readiness check.
const readinessTimeout = 2 * time.Second

// MuxOptions configures the middleware stack around the routes.
type MuxOptions struct {
	Verifier       driven.IdentityVerifier
	AllowedOrigins []string

	// Readiness reports whether the backing store is reachable. Nil means
	// always ready.
	Readiness func(ctx context.Context) error
}

// NewServeMux creates an http.Handler with all routes registered. Every
// route except the liveness and readiness probes and /metrics requires a
// verified bearer token.
func NewServeMux(h *Handler, opts MuxOptions, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	protect := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware(opts.Verifier, logger, fn)
	}

	mux.HandleFunc("GET /{$}", h.Liveness)
	mux.Handle("GET /readyz", readinessHandler(opts.Readiness, logger))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /tokens", protect(h.StoreCredential))
	mux.Handle("GET /tokens/status", protect(h.CredentialStatus))
	mux.Handle("DELETE /tokens", protect(h.RemoveCredential))

	mux.Handle("POST /calcom/event-types", protect(h.ListEventTypes))
	mux.Handle("POST /calcom/bookings/list", protect(h.ListBookings))
	mux.Handle("POST /calcom/bookings", protect(h.CreateBooking))
	mux.Handle("POST /calcom/bookings/cancel", protect(h.CancelBooking))
	mux.Handle("POST /calcom/availability", protect(h.ListAvailability))
	mux.Handle("POST /calcom/schedules", protect(h.ListSchedules))

	// CORS answers preflight requests before they reach the mux. Recovery
	// sits inside metrics and logging so recovered panics are recorded as 500.
	wrapped := corsMiddleware(opts.AllowedOrigins, mux)
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = metricsMiddleware(wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Liveness reports that the process is serving requests.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(livenessMessage))
}

// readinessHandler answers 200 when check succeeds and 503 otherwise.
func readinessHandler(check func(ctx context.Context) error, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()

			if err := check(ctx); err != nil {
				logger.Warn("readiness check failed",
					"request_id", requestIDFromContext(r.Context()),
					"error", err,
				)
				writeError(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}

// effectiveSubject resolves the subject a request acts on. On failure the
// error response has already been written and ok is false.
func (h *Handler) effectiveSubject(w http.ResponseWriter, r *http.Request, targetID string) (string, bool) {
	identity := identityFromContext(r.Context())
	subjectID, err := h.access.Resolve(r.Context(), identity.SubjectID, targetID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return "", false
	}
	return subjectID, true
}

// forward resolves the effective subject, runs call and relays the upstream
// status and body unchanged.
func (h *Handler) forward(
	w http.ResponseWriter,
	r *http.Request,
	targetID string,
	call func(ctx context.Context, subjectID string) (*model.UpstreamResponse, error),
) {
	subjectID, ok := h.effectiveSubject(w, r, targetID)
	if !ok {
		return
	}

	resp, err := call(r.Context(), subjectID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, resp.StatusCode, resp.Body)
}

// writeServiceError maps application errors to HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, application.ErrNotAuthorized.Error())
	case errors.Is(err, application.ErrCredentialNotConfigured):
		writeError(w, http.StatusInternalServerError, application.ErrCredentialNotConfigured.Error())
	default:
		h.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
