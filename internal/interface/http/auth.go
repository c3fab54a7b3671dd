package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// Идентичность определяется один раз на запрос: либо из Bearer JWT,
// либо из внутреннего секрета для служебных вызовов.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// HeaderInternalSecret carries the shared secret of internal callers.
	HeaderInternalSecret = "X-Internal-Secret"

	// InternalUID is the identity assigned to internal callers.
	InternalUID = "internal"
)

var (
	// ErrMissingCredentials is returned when the request carries no credentials.
	ErrMissingCredentials = errors.New("auth: missing credentials")

	// ErrInvalidCredentials is returned for bad tokens or secrets.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// AuthConfig configures the Authenticator.
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 tokens.
	JWTSecret string

	// Issuer, when set, must match the iss claim.
	Issuer string

	// InternalSecretHash is the bcrypt hash of the internal secret.
	// Empty disables internal authentication.
	InternalSecretHash string
}

// Claims are the token claims understood by the service.
type Claims struct {
	Role string `json:"role"`
	Area string `json:"area,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator resolves the caller identity of a request.
type Authenticator struct {
	secret       []byte
	issuer       string
	internalHash []byte
	now          func() time.Time
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(cfg AuthConfig) *Authenticator {
	a := &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	if cfg.InternalSecretHash != "" {
		a.internalHash = []byte(cfg.InternalSecretHash)
	}
	return a
}

// Authenticate returns the identity of the caller.
func (a *Authenticator) Authenticate(r *http.Request) (identity.Identity, error) {
	if secret := r.Header.Get(HeaderInternalSecret); secret != "" {
		return a.authenticateInternal(secret)
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return identity.Identity{}, ErrMissingCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return identity.Identity{}, ErrInvalidCredentials
	}
	return a.parseToken(strings.TrimSpace(token))
}

func (a *Authenticator) authenticateInternal(secret string) (identity.Identity, error) {
	if len(a.internalHash) == 0 {
		return identity.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.internalHash, []byte(secret)); err != nil {
		return identity.Identity{}, ErrInvalidCredentials
	}
	return identity.SuperAdmin(InternalUID), nil
}

func (a *Authenticator) parseToken(raw string) (identity.Identity, error) {
	if len(a.secret) == 0 {
		return identity.Identity{}, ErrInvalidCredentials
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if claims.Subject == "" {
		return identity.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidCredentials)
	}

	id := identity.Identity{
		UID:  claims.Subject,
		Role: identity.ParseRole(claims.Role),
	}
	if claims.Area != "" {
		id.Area = shared.NormalizeArea(claims.Area)
	}
	return id, nil
}

// IssueToken signs a token for id valid for ttl. Used by tooling and tests.
func (a *Authenticator) IssueToken(id identity.Identity, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Role: string(id.Role),
		Area: string(id.Area),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ──────────────────────────────────────────────────────────────────────────────
// Context
// ──────────────────────────────────────────────────────────────────────────────

type identityCtxKey struct{}

func contextWithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(identity.Identity)
	return id, ok
}
