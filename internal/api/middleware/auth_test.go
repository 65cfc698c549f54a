package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lending-engine/internal/api/middleware"
	"lending-engine/internal/config"
	"lending-engine/internal/domain/authz"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signTestToken(t *testing.T, claims middleware.ActorClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func accessClaims(subject uuid.UUID, role authz.Role) middleware.ActorClaims {
	return middleware.ActorClaims{
		Role:     string(role),
		TokenUse: middleware.TokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func runAuthenticated(t *testing.T, token string) (*httptest.ResponseRecorder, authz.Actor, bool) {
	t.Helper()
	cfg := config.AuthConfig{Enabled: true, JWTSecret: testSecret}

	var gotActor authz.Actor
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, gotOK = middleware.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/offers", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	middleware.Authenticator(cfg, testLogger())(next).ServeHTTP(rec, req)
	return rec, gotActor, gotOK
}

func TestAuthenticator(t *testing.T) {
	t.Run("valid access token injects the actor", func(t *testing.T) {
		subject := uuid.New()
		token := signTestToken(t, accessClaims(subject, authz.RoleInstaller), testSecret)

		rec, actor, ok := runAuthenticated(t, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ok)
		assert.Equal(t, subject, actor.ID)
		assert.Equal(t, authz.RoleInstaller, actor.Role)
		assert.Nil(t, actor.CustomerID)
	})

	t.Run("customer claims carry the linked profile", func(t *testing.T) {
		subject := uuid.New()
		profileID := uuid.New()
		claims := accessClaims(subject, authz.RoleCustomer)
		claims.CustomerID = profileID.String()
		token := signTestToken(t, claims, testSecret)

		rec, actor, ok := runAuthenticated(t, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ok)
		assert.NotNil(t, actor.CustomerID)
		assert.Equal(t, profileID, *actor.CustomerID)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec, _, ok := runAuthenticated(t, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, ok)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		token := signTestToken(t, accessClaims(uuid.New(), authz.RoleInstaller), "other-secret")

		rec, _, _ := runAuthenticated(t, token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		claims := accessClaims(uuid.New(), authz.RoleInstaller)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		token := signTestToken(t, claims, testSecret)

		rec, _, _ := runAuthenticated(t, token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token cannot reach protected routes", func(t *testing.T) {
		claims := accessClaims(uuid.New(), authz.RoleInstaller)
		claims.TokenUse = middleware.TokenUseRefresh
		token := signTestToken(t, claims, testSecret)

		rec, _, _ := runAuthenticated(t, token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		token := signTestToken(t, accessClaims(uuid.New(), "SUPERUSER"), testSecret)

		rec, _, _ := runAuthenticated(t, token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("disabled auth passes requests through untouched", func(t *testing.T) {
		cfg := config.AuthConfig{Enabled: false}
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, ok := middleware.ActorFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/offers", nil)
		rec := httptest.NewRecorder()
		middleware.Authenticator(cfg, testLogger())(next).ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestParseClaims(t *testing.T) {
	t.Run("round trips signed claims", func(t *testing.T) {
		subject := uuid.New()
		token := signTestToken(t, accessClaims(subject, authz.RoleCustomer), testSecret)

		claims, err := middleware.ParseClaims(token, testSecret)

		assert.NoError(t, err)
		assert.Equal(t, subject.String(), claims.Subject)
		assert.Equal(t, string(authz.RoleCustomer), claims.Role)
		assert.Equal(t, middleware.TokenUseAccess, claims.TokenUse)
	})

	t.Run("rejects tokens signed with a different method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uuid.New().String()})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, parseErr := middleware.ParseClaims(signed, testSecret)
		assert.Error(t, parseErr)
	})
}
