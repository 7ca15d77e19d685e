package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/example/video-platform/internal/platform/api"
	jwt "github.com/golang-jwt/jwt/v5"
)

type ctxKeySubject struct{}
type ctxKeyRole struct{}

// SubjectFromContext returns the identity-provider subject of the verified
// caller. It is the provider's user id, not the local users.id.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeySubject{}).(string)
	return v, ok
}

// WithSubject injects the provider subject into context. Useful for testing.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySubject{}, sub)
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRole{}).(string)
	return v, ok
}

// WithRole injects a role into context. Useful for testing.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole{}, role)
}

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTVerifier checks HS256 session tokens issued by the identity provider.
// Issuer and Audience are enforced only when set.
type JWTVerifier struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func (v JWTVerifier) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

var errNoToken = errors.New("no bearer token")

func (v JWTVerifier) fromRequest(r *http.Request) (*Claims, error) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return nil, errNoToken
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("authorization scheme is not bearer")
	}
	return v.Parse(strings.TrimSpace(parts[1]))
}

func withClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeySubject{}, c.Subject)
	if strings.TrimSpace(c.Role) != "" {
		ctx = context.WithValue(ctx, ctxKeyRole{}, c.Role)
	}
	return ctx
}

// RequireUser middleware validates the Bearer token and injects the subject
// and role into context.
func RequireUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.fromRequest(r)
			if err != nil {
				api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalUser is RequireUser for public endpoints: anonymous requests pass
// through, but a token that is present must be valid.
func OptionalUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.fromRequest(r)
			switch {
			case errors.Is(err, errNoToken):
				next.ServeHTTP(w, r)
			case err != nil:
				api.Unauthorized(w, "UNAUTHORIZED", "invalid token", "")
			default:
				next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
			}
		})
	}
}
