package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"lending-engine/internal/config"
	"lending-engine/internal/domain/authz"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const actorContextKey contextKey = "authenticated_actor"

const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// ActorFromContext returns the actor the Authenticator middleware stored for
// this request. The boolean is false when the request never passed through
// the middleware.
func ActorFromContext(ctx context.Context) (authz.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(authz.Actor)
	return actor, ok
}

// WithActor is exposed for handler tests.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// Authenticator verifies the bearer token and injects the resulting
// authz.Actor into the request context. It authenticates only; every
// authorization decision stays with the domain services.
func Authenticator(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFromRequest(r, cfg.JWTSecret, logger)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func actorFromRequest(r *http.Request, secret string, logger *slog.Logger) (authz.Actor, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("Authenticator: Missing Authorization header")
		return authz.Actor{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		logger.Warn("Authenticator: Invalid Authorization header format")
		return authz.Actor{}, false
	}

	claims, err := ParseClaims(parts[1], secret)
	if err != nil {
		logger.Warn("Authenticator: Invalid token", "error", err)
		return authz.Actor{}, false
	}
	if claims.TokenUse != TokenUseAccess {
		logger.Warn("Authenticator: Token is not an access token", "token_use", claims.TokenUse)
		return authz.Actor{}, false
	}

	actor, err := claims.Actor()
	if err != nil {
		logger.Warn("Authenticator: Token claims do not form a valid actor", "error", err)
		return authz.Actor{}, false
	}
	return actor, true
}

// ActorClaims is the claim set both access and refresh tokens carry.
type ActorClaims struct {
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	TokenUse   string `json:"token_use"`
	jwt.RegisteredClaims
}

// Actor converts the verified claims into the authorization engine's input.
func (c *ActorClaims) Actor() (authz.Actor, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return authz.Actor{}, err
	}

	role := authz.Role(c.Role)
	if !role.Valid() {
		return authz.Actor{}, jwt.ErrTokenInvalidClaims
	}

	actor := authz.Actor{ID: id, Role: role}
	if c.CustomerID != "" {
		customerID, parseErr := uuid.Parse(c.CustomerID)
		if parseErr != nil {
			return authz.Actor{}, parseErr
		}
		actor.CustomerID = &customerID
	}
	return actor, nil
}

// ParseClaims verifies signature, expiry and signing method, returning the
// decoded claims.
func ParseClaims(tokenString, secret string) (*ActorClaims, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
