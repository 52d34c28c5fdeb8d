package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/jwt"
)

const secret = "test-secret-key-with-enough-length"

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestNew_MissingKey(t *testing.T) {
	t.Parallel()
	_, err := jwt.New("")
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New(secret, jwt.WithIssuer("chatbilling"))
	require.NoError(t, err)

	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.User())
	assert.Equal(t, "chatbilling", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.Issue("")
	assert.ErrorIs(t, err, jwt.ErrMissingSubject)
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	issuer, err := jwt.New(secret, jwt.WithClock(fixedClock(issued)), jwt.WithTTL(time.Hour))
	require.NoError(t, err)
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		later, err := jwt.New(secret, jwt.WithClock(fixedClock(issued.Add(2*time.Hour))))
		require.NoError(t, err)
		_, err = later.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New("another-secret", jwt.WithClock(fixedClock(issued)))
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		strict, err := jwt.New(secret, jwt.WithIssuer("someone-else"), jwt.WithClock(fixedClock(issued)))
		require.NoError(t, err)
		_, err = strict.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := issuer.Verify("")
		assert.ErrorIs(t, err, jwt.ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := issuer.Verify("not.a.token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}

func TestVerify_LegacyUserIDClaim(t *testing.T) {
	t.Parallel()

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"userId": "legacy-user",
		"email":  "legacy@example.com",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	svc, err := jwt.New(secret)
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "legacy-user", claims.User())
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	extract := jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor("token"))

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer abc")
		got, err := extract(req)
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
		got, err := extract(req)
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", got)
	})

	t.Run("bearer wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header")
		req.AddCookie(&http.Cookie{Name: "token", Value: "cookie"})
		got, err := extract(req)
		require.NoError(t, err)
		assert.Equal(t, "header", got)
	})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Token abc",
		"empty token":  "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			_, err := extract(req)
			assert.ErrorIs(t, err, jwt.ErrMissingToken)
		})
	}
}
