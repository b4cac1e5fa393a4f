// Package firebase verifies Firebase Authentication ID tokens.
package firebase

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
	oauthjwt "golang.org/x/oauth2/jwt"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

const (
	defaultCertsURL  = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	defaultTokenURL  = "https://oauth2.googleapis.com/token"
	defaultLookupURL = "https://identitytoolkit.googleapis.com/v1/projects/%s/accounts:lookup"
	issuerPrefix     = "https://securetoken.google.com/"
	maxSubjectLength = 128
	clockSkew        = 5 * time.Second
)

var identityToolkitScopes = []string{
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Compile-time interface satisfaction check.
var _ driven.IdentityVerifier = (*Verifier)(nil)

// Config holds the service account and endpoints used by the Verifier.
// Empty URLs and a nil HTTPClient fall back to the Google defaults.
type Config struct {
	ProjectID     string
	ClientEmail   string
	PrivateKeyPEM []byte
	CheckRevoked  bool

	CertsURL   string
	TokenURL   string
	LookupURL  string
	HTTPClient *http.Client
}

// Verifier checks ID token signatures against Google's published
// certificates and validates the standard Firebase claims.
type Verifier struct {
	projectID    string
	issuer       string
	certsURL     string
	certClient   *http.Client
	lookupURL    string
	lookupClient *http.Client // nil unless revocation checks are enabled
	logger       *slog.Logger
}

// idTokenClaims are the Firebase ID token claims this service reads.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email    string           `json:"email,omitempty"`
	AuthTime *jwt.NumericDate `json:"auth_time,omitempty"`
}

// NewVerifier builds a Verifier. The private key must be a PEM-encoded RSA
// key even when revocation checks are off.
func NewVerifier(cfg Config, logger *slog.Logger) (*Verifier, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase: project id is required")
	}
	if cfg.ClientEmail == "" {
		return nil, errors.New("firebase: client email is required")
	}
	if _, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM); err != nil {
		return nil, fmt.Errorf("firebase: parse private key: %w", err)
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 10 * time.Second}
	}

	// Google serves the certificates with Cache-Control max-age, which
	// httpcache honours so they are refetched only after rotation.
	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = base.Transport
	certClient := &http.Client{Transport: cacheTransport, Timeout: base.Timeout}

	v := &Verifier{
		projectID:  cfg.ProjectID,
		issuer:     issuerPrefix + cfg.ProjectID,
		certsURL:   valueOr(cfg.CertsURL, defaultCertsURL),
		certClient: certClient,
		lookupURL:  valueOr(cfg.LookupURL, fmt.Sprintf(defaultLookupURL, url.PathEscape(cfg.ProjectID))),
		logger:     logger,
	}

	if cfg.CheckRevoked {
		sa := &oauthjwt.Config{
			Email:      cfg.ClientEmail,
			PrivateKey: cfg.PrivateKeyPEM,
			Scopes:     identityToolkitScopes,
			TokenURL:   valueOr(cfg.TokenURL, defaultTokenURL),
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		v.lookupClient = sa.Client(ctx)
		v.lookupClient.Timeout = base.Timeout
	}

	return v, nil
}

// Verify validates token and returns the identity it asserts. Every
// failure, including certificate fetch errors, wraps driven.ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, fmt.Errorf("%w: empty token", driven.ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	)

	var claims idTokenClaims
	if _, err := parser.ParseWithClaims(token, &claims, v.keyFunc(ctx)); err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", driven.ErrInvalidToken, err)
	}

	if claims.Subject == "" || len(claims.Subject) > maxSubjectLength {
		return model.Identity{}, fmt.Errorf("%w: subject must be 1-%d characters", driven.ErrInvalidToken, maxSubjectLength)
	}
	if claims.IssuedAt == nil {
		return model.Identity{}, fmt.Errorf("%w: iat missing", driven.ErrInvalidToken)
	}
	if claims.AuthTime == nil || claims.AuthTime.After(time.Now().Add(clockSkew)) {
		return model.Identity{}, fmt.Errorf("%w: auth_time missing or in the future", driven.ErrInvalidToken)
	}

	if v.lookupClient != nil {
		if err := v.checkRevoked(ctx, claims.Subject, claims.IssuedAt.Time); err != nil {
			return model.Identity{}, fmt.Errorf("%w: %w", driven.ErrInvalidToken, err)
		}
	}

	return model.Identity{SubjectID: claims.Subject, Email: claims.Email}, nil
}

// keyFunc resolves the token's kid header to a Google signing certificate.
func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token has no kid header")
		}

		keys, err := v.fetchKeys(ctx)
		if err != nil {
			return nil, err
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("no certificate for kid %q", kid)
		}
		return key, nil
	}
}

// fetchKeys downloads the kid -> PEM certificate map and extracts the RSA
// public keys.
func (v *Verifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create certificate request: %w", err)
	}

	resp, err := v.certClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch certificates: status %d", resp.StatusCode)
	}

	// Read to EOF so httpcache stores the response.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read certificates: %w", err)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, fmt.Errorf("decode certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertificateKey(certPEM)
		if err != nil {
			v.logger.Warn("skipping unparseable signing certificate", "kid", kid, "error", err)
			continue
		}
		keys[kid] = key
	}
	return keys, nil
}

func parseCertificateKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("certificate key is not RSA")
	}
	return key, nil
}

type lookupResponse struct {
	Users []struct {
		LocalID    string `json:"localId"`
		Disabled   bool   `json:"disabled"`
		ValidSince string `json:"validSince"`
	} `json:"users"`
}

// checkRevoked asks the Identity Toolkit whether the account still exists,
// is enabled, and has not had its refresh tokens revoked since issuedAt.
func (v *Verifier) checkRevoked(ctx context.Context, subjectID string, issuedAt time.Time) error {
	payload, err := json.Marshal(map[string][]string{"localId": {subjectID}})
	if err != nil {
		return fmt.Errorf("encode lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.lookupURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.lookupClient.Do(req)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("account lookup: status %d: %s", resp.StatusCode, body)
	}

	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode account lookup: %w", err)
	}

	if len(result.Users) == 0 {
		return errors.New("account not found")
	}
	user := result.Users[0]
	if user.Disabled {
		return errors.New("account disabled")
	}
	if user.ValidSince != "" {
		secs, err := strconv.ParseInt(user.ValidSince, 10, 64)
		if err != nil {
			return fmt.Errorf("parse validSince: %w", err)
		}
		if issuedAt.Unix() < secs {
			return errors.New("token revoked")
		}
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
