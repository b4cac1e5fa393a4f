package driven

import (
	"context"
	"errors"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

// ErrInvalidToken indicates the bearer token is missing, malformed, expired,
// revoked, or otherwise unverifiable. Callers map it to 401.
var ErrInvalidToken = errors.New("invalid identity token")

// IdentityVerifier validates an opaque bearer token issued by the identity
// provider and yields the subject behind it. Every failure wraps
// ErrInvalidToken.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (model.Identity, error)
}
