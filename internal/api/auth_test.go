package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/drawnet/drawboard/internal/config"
	"github.com/drawnet/drawboard/internal/database"
	"github.com/drawnet/drawboard/internal/relay"
	"github.com/drawnet/drawboard/internal/testutil"
	"github.com/drawnet/drawboard/internal/types"
	"github.com/stretchr/testify/assert"
)

func newTestApp(t *testing.T, db database.Repository, rs *relay.RelayServer) *DrawboardApp {
	cfg := &config.Config{
		ServerAddr:     "localhost:0",
		DatabaseDSN:    "host=localhost",
		SigningKey:     []byte("test-signing-key"),
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	return NewDrawboardApp(http.NewServeMux(), testutil.TestLogger(t), rs, db, cfg)
}

func TestJwtRoundTrip(t *testing.T) {
	s := newTestApp(t, &database.MockRepository{}, nil)
	user := types.User{Id: 42, Username: "alice"}

	token, err := s.createJwtForSession(user, time.Hour)
	assert.NoError(t, err, "expected no error creating token")
	assert.NotEmpty(t, token, "expected a signed token")

	userId, err := s.extractUserIdFromToken(token)
	assert.NoError(t, err, "expected no error verifying token")
	assert.Equal(t, 42, userId, "expected user id claim to round trip")
}

func TestExtractUserIdFromToken(t *testing.T) {
	s := newTestApp(t, &database.MockRepository{}, nil)

	t.Run("expired token", func(t *testing.T) {
		token, err := s.createJwtForSession(types.User{Id: 1}, -time.Hour)
		assert.NoError(t, err, "expected no error creating token")

		_, err = s.extractUserIdFromToken(token)
		assert.Error(t, err, "expected expired token to be rejected")
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other := newTestApp(t, &database.MockRepository{}, nil)
		other.signingKey = []byte("some-other-key")

		token, err := other.createJwtForSession(types.User{Id: 1}, time.Hour)
		assert.NoError(t, err, "expected no error creating token")

		_, err = s.extractUserIdFromToken(token)
		assert.Error(t, err, "expected token with wrong signature to be rejected")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := s.extractUserIdFromToken("not-a-token")
		assert.Error(t, err, "expected garbage token to be rejected")
	})
}

func Test_hashPassword_verifyPassword(t *testing.T) {
	hash, err := hashPassword("password")
	assert.NoError(t, err, "expected no error hashing password")
	assert.True(t, verifyPassword(hash, "password"), "expected matching password to verify")
	assert.False(t, verifyPassword(hash, "wrong"), "expected wrong password to fail verification")
}

func Test_createJwtCookie(t *testing.T) {
	cookie := createJwtCookie("tok", time.Hour)
	assert.Equal(t, tokenCookieKey, cookie.Name, "expected cookie name to match")
	assert.Equal(t, "tok", cookie.Value, "expected cookie value to match")
	assert.True(t, cookie.HttpOnly, "expected cookie to be http-only")
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite, "expected same-site strict")
}

func TestUserIdContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := UserId(req.Context())
	assert.False(t, ok, "expected no user id on a fresh context")

	ctx := WithUserId(req.Context(), 7)
	userId, ok := UserId(ctx)
	assert.True(t, ok, "expected user id to be present")
	assert.Equal(t, 7, userId, "expected user id to match")
}
