package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
	"github.com/ninamcunha/amooora-backend/supabase/client"
)

// LocalIDHeader carries the device-local identity of a caller with no
// account. Anonymous likes and attendance are keyed by it.
const LocalIDHeader = "X-Local-ID"

// TokenResolver resolves an access token remotely when no JWT secret is
// configured for local verification. *client.Client satisfies this.
type TokenResolver interface {
	GetUser(ctx context.Context, accessToken string) (*client.AuthUser, error)
}

// Auth resolves the acting identity for every request. A bearer token
// yields an authenticated identity; no token yields an anonymous identity
// keyed by the local-id header. Invalid tokens are rejected rather than
// silently downgraded to anonymous.
type Auth struct {
	secret   []byte
	resolver TokenResolver
	log      *logger.Logger
}

// NewAuth creates the identity middleware. secret is the Supabase JWT
// secret for local HS256 verification; when empty, tokens are resolved
// through the resolver.
func NewAuth(secret string, resolver TokenResolver, log *logger.Logger) *Auth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Auth{secret: []byte(secret), resolver: resolver, log: log}
}

// Handler returns the middleware handler.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ident := identity.Anonymous(r.Header.Get(LocalIDHeader))
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeAuthError(w, errors.Unauthorized("invalid Authorization header format"))
			return
		}

		userID, err := a.resolveUserID(r.Context(), parts[1])
		if err != nil {
			a.log.WithError(err).Warn("token validation failed")
			writeAuthError(w, errors.Unauthorized("invalid or expired token"))
			return
		}

		ctx := WithIdentity(r.Context(), identity.Authenticated(userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) resolveUserID(ctx context.Context, token string) (string, error) {
	if len(a.secret) > 0 {
		return a.verifyLocal(token)
	}
	if a.resolver == nil {
		return "", errors.Unauthorized("no token verifier configured")
	}
	user, err := a.resolver.GetUser(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// verifyLocal checks the token signature against the project JWT secret.
// Supabase signs access tokens with HS256; the subject is the user id.
func (a *Auth) verifyLocal(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.Unauthorized("token has no subject")
	}
	return claims.Subject, nil
}

// RequireAuthenticated rejects anonymous callers. Placed after Auth on
// routes that only make sense for signed-in users.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFrom(r.Context()).IsAuthenticated() {
			writeAuthError(w, errors.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, err *errors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": string(err.Code), "message": err.Message},
	})
}
