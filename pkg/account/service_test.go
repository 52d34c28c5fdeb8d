package account_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/chatbilling/pkg/account"
	"github.com/dmitrymomot/chatbilling/pkg/jwt"
)

func newService(t *testing.T) (*account.Service, *jwt.Service) {
	t.Helper()
	tokens, err := jwt.New("test-secret")
	require.NoError(t, err)
	return account.NewService(account.NewMemoryStore(), tokens, account.WithBcryptCost(bcrypt.MinCost)), tokens
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("registers and issues a token for the user id", func(t *testing.T) {
		t.Parallel()
		svc, tokens := newService(t)

		sess, err := svc.Signup(context.Background(), "  Ada@Example.com ", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", sess.User.Email)
		assert.NotEmpty(t, sess.User.ID)

		claims, err := tokens.Verify(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.User.ID, claims.User())
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		ctx := context.Background()

		_, err := svc.Signup(ctx, "", "secret1")
		assert.ErrorIs(t, err, account.ErrMissingCredentials)
		_, err = svc.Signup(ctx, "not-an-email", "secret1")
		assert.ErrorIs(t, err, account.ErrInvalidEmail)
		_, err = svc.Signup(ctx, "ada@example.com", "12345")
		assert.ErrorIs(t, err, account.ErrWeakPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		ctx := context.Background()

		_, err := svc.Signup(ctx, "ada@example.com", "secret1")
		require.NoError(t, err)
		_, err = svc.Signup(ctx, "ADA@example.com", "another1")
		assert.ErrorIs(t, err, account.ErrEmailTaken)
	})
}

func TestSignin(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	created, err := svc.Signup(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	sess, err := svc.Signin(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, sess.User.ID)
	assert.NotEmpty(t, sess.Token)

	_, err = svc.Signin(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)

	_, err = svc.Signin(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials, "unknown email is indistinguishable")

	_, err = svc.Signin(ctx, "ada@example.com", "")
	assert.ErrorIs(t, err, account.ErrMissingCredentials)

	u, err := svc.Get(ctx, created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestSession_HidesPasswordHash(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	sess, err := svc.Signup(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.PasswordHash)

	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"token"`)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, u *account.User) (*account.User, error) {
	args := m.Called(ctx, u)
	if v := args.Get(0); v != nil {
		return v.(*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*account.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSignin_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	boom := errors.New("connection reset")
	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, boom)

	tokens, err := jwt.New("test-secret")
	require.NoError(t, err)
	svc := account.NewService(store, tokens)

	_, err = svc.Signin(context.Background(), "ada@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, account.ErrInvalidCredentials)
	store.AssertExpectations(t)
}

func TestNewService_Panics(t *testing.T) {
	t.Parallel()

	tokens, err := jwt.New("test-secret")
	require.NoError(t, err)
	assert.Panics(t, func() { account.NewService(nil, tokens) })
	assert.Panics(t, func() { account.NewService(account.NewMemoryStore(), nil) })
}
