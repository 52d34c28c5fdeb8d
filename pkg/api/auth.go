package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/chatbilling/pkg/jwt"
)

// Authenticator resolves the verified user ID of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) (string, error)

func (f AuthenticatorFunc) Authenticate(r *http.Request) (string, error) { return f(r) }

// JWTAuthenticator verifies HS256 bearer tokens (or a "token" cookie).
type JWTAuthenticator struct {
	tokens    *jwt.Service
	extractor jwt.TokenExtractorFunc
}

// NewJWTAuthenticator creates an authenticator backed by tokens.
func NewJWTAuthenticator(tokens *jwt.Service) *JWTAuthenticator {
	if tokens == nil {
		panic("api: jwt.Service is required")
	}
	return &JWTAuthenticator{
		tokens:    tokens,
		extractor: jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor("token")),
	}
}

func (a *JWTAuthenticator) Authenticate(r *http.Request) (string, error) {
	raw, err := a.extractor(r)
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}
	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}
	return claims.User(), nil
}

type userIDKey struct{}

// UserIDFromContext returns the user ID stored by the auth middleware.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

func requireUser(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.Authenticate(r)
			if err == nil && userID == "" {
				err = ErrUnauthorized
			}
			if err != nil {
				log.DebugContext(r.Context(), "request rejected", slog.String("reason", err.Error()))
				respondError(w, r, log, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
		})
	}
}
