package driven

import (
	"context"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

// SchedulingAPI defines the driven port for the upstream scheduling API.
// Call performs exactly one HTTP request and never alters the upstream
// status code. An error means the request could not be issued or its
// response could not be read.
type SchedulingAPI interface {
	Call(ctx context.Context, req model.UpstreamRequest) (*model.UpstreamResponse, error)
}
