// Copyright (c) 2026 MindMeld. All rights reserved.

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/internal/platform/sec"
)

// # Test Doubles

type fakeUserRepository struct {
	users map[string]*User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*User{}}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this username")
}

func (f *fakeUserRepository) Create(_ context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, userID string) error {
	if user, ok := f.users[userID]; ok {
		user.IsVerified = true
	}
	return nil
}

func (f *fakeUserRepository) TouchActivity(_ context.Context, _ string) error {
	return nil
}

type fakeRefreshTokenRepository struct {
	tokens map[string]*RefreshToken // keyed by JTI
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{tokens: map[string]*RefreshToken{}}
}

func (f *fakeRefreshTokenRepository) Create(_ context.Context, token *RefreshToken) error {
	copied := *token
	f.tokens[token.JTI] = &copied
	return nil
}

func (f *fakeRefreshTokenRepository) FindByJTI(_ context.Context, jti string) (*RefreshToken, error) {
	token, ok := f.tokens[jti]
	if !ok || token.IsBlacklisted || token.ExpiresAt.Before(time.Now()) {
		return nil, apperr.NotFound("Refresh token not found or expired")
	}
	return token, nil
}

func (f *fakeRefreshTokenRepository) Blacklist(_ context.Context, jti string) error {
	if token, ok := f.tokens[jti]; ok {
		token.IsBlacklisted = true
	}
	return nil
}

func (f *fakeRefreshTokenRepository) ListActiveByUser(_ context.Context, userID string) ([]RefreshToken, error) {
	var active []RefreshToken
	for _, token := range f.tokens {
		if token.UserID == userID && !token.IsBlacklisted && token.ExpiresAt.After(time.Now()) {
			active = append(active, *token)
		}
	}
	return active, nil
}

func (f *fakeRefreshTokenRepository) BlacklistAllForUser(_ context.Context, userID string) error {
	for _, token := range f.tokens {
		if token.UserID == userID {
			token.IsBlacklisted = true
		}
	}
	return nil
}

func (f *fakeRefreshTokenRepository) DeleteExpired(_ context.Context) error { return nil }

type fakeBlacklistRepository struct {
	entries map[string]time.Duration
}

func newFakeBlacklistRepository() *fakeBlacklistRepository {
	return &fakeBlacklistRepository{entries: map[string]time.Duration{}}
}

func (f *fakeBlacklistRepository) Add(_ context.Context, jti string, ttl time.Duration) error {
	f.entries[jti] = ttl
	return nil
}

func (f *fakeBlacklistRepository) Exists(_ context.Context, jti string) (bool, error) {
	_, ok := f.entries[jti]
	return ok, nil
}

type fakeVerificationTokenRepository struct {
	tokens map[string]string
}

func newFakeVerificationTokenRepository() *fakeVerificationTokenRepository {
	return &fakeVerificationTokenRepository{tokens: map[string]string{}}
}

func (f *fakeVerificationTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeVerificationTokenRepository) Get(_ context.Context, token string) (string, error) {
	if userID, ok := f.tokens[token]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Verification token is invalid or expired")
}

func (f *fakeVerificationTokenRepository) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

// fakeTokenProvider encodes the jti into the refresh token string so tests
// can round-trip without signing real JWTs.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "access." + userID, nil
}

func (fakeTokenProvider) GenerateRefreshToken(userID, jti string, _ time.Duration) (string, error) {
	return "refresh." + userID + "." + jti, nil
}

func (fakeTokenProvider) VerifyRefreshToken(tokenString string) (*sec.RefreshClaims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] != "refresh" {
		return nil, apperr.Unauthorized("malformed token")
	}
	return &sec.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: parts[2]},
		UserID:           parts[1],
	}, nil
}

// # Helpers

func newTestService() (*Service, *fakeUserRepository, *fakeRefreshTokenRepository, *fakeBlacklistRepository, *fakeVerificationTokenRepository) {
	users := newFakeUserRepository()
	refresh := newFakeRefreshTokenRepository()
	blacklist := newFakeBlacklistRepository()
	verify := newFakeVerificationTokenRepository()
	service := NewService(users, refresh, blacklist, verify, fakeTokenProvider{})
	return service, users, refresh, blacklist, verify
}

func registerTestUser(t *testing.T, service *Service) *User {
	t.Helper()
	pair, err := service.Register(context.Background(), RegisterInput{
		Username: "brainiac",
		Email:    "brainiac@example.com",
		Password: "secret-pass",
		Age:      28,
	})
	require.NoError(t, err)
	return pair.User
}

// # Tests

func TestService_Register(t *testing.T) {
	service, _, refresh, _, verify := newTestService()

	pair, err := service.Register(context.Background(), RegisterInput{
		Username: "brainiac",
		Email:    "brainiac@example.com",
		Password: "secret-pass",
		Age:      28,
	})
	require.NoError(t, err)

	user := pair.User
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "brainiac", user.Username)
	assert.Equal(t, 28, user.Age)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "secret-pass", user.PasswordHash, "password must never be stored in plain text")
	assert.Len(t, verify.tokens, 1, "registration should queue a verification token")

	// Enrollment opens a session right away
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Len(t, refresh.tokens, 1)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, _, _, _ := newTestService()
	registerTestUser(t, service)

	_, err := service.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "brainiac@example.com",
		Password: "another-pass",
		Age:      33,
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	service, _, _, _, _ := newTestService()
	registerTestUser(t, service)

	_, err := service.Register(context.Background(), RegisterInput{
		Username: "brainiac",
		Email:    "someone-else@example.com",
		Password: "another-pass",
		Age:      33,
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestService_Login(t *testing.T) {
	service, _, refresh, _, _ := newTestService()
	user := registerTestUser(t, service)

	tests := []struct {
		name  string
		login string
	}{
		{name: "by email", login: "brainiac@example.com"},
		{name: "by username", login: "brainiac"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			pair, err := service.Login(context.Background(), LoginInput{
				Login:    testCase.login,
				Password: "secret-pass",
			})

			require.NoError(t, err)
			assert.Equal(t, "access."+user.ID, pair.AccessToken)
			assert.NotEmpty(t, pair.RefreshToken)
			assert.Equal(t, user.ID, pair.User.ID)
		})
	}

	assert.Len(t, refresh.tokens, 3, "registration and each login persist their own refresh record")
}

func TestService_Login_WrongPassword(t *testing.T) {
	service, _, _, _, _ := newTestService()
	registerTestUser(t, service)

	_, err := service.Login(context.Background(), LoginInput{
		Login:    "brainiac@example.com",
		Password: "wrong-pass",
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

func TestService_Login_UnknownUser(t *testing.T) {
	service, _, _, _, _ := newTestService()

	_, err := service.Login(context.Background(), LoginInput{
		Login:    "ghost@example.com",
		Password: "whatever",
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

func TestService_RefreshSession_Rotation(t *testing.T) {
	service, _, refresh, blacklist, _ := newTestService()
	registerTestUser(t, service)

	pair, err := service.Login(context.Background(), LoginInput{
		Login:    "brainiac@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	rotated, err := service.RefreshSession(context.Background(), pair.RefreshToken, Device{})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken, "rotation must issue a new refresh token")

	// The presented jti is revoked in both stores
	originalJTI := strings.Split(pair.RefreshToken, ".")[2]
	assert.True(t, refresh.tokens[originalJTI].IsBlacklisted)
	blacklisted, err := blacklist.Exists(context.Background(), originalJTI)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestService_RefreshSession_ReuseRejected(t *testing.T) {
	service, _, _, _, _ := newTestService()
	registerTestUser(t, service)

	pair, err := service.Login(context.Background(), LoginInput{
		Login:    "brainiac@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	_, err = service.RefreshSession(context.Background(), pair.RefreshToken, Device{})
	require.NoError(t, err)

	// Replaying the consumed token must fail
	_, err = service.RefreshSession(context.Background(), pair.RefreshToken, Device{})
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

func TestService_RefreshSession_MalformedToken(t *testing.T) {
	service, _, _, _, _ := newTestService()

	_, err := service.RefreshSession(context.Background(), "not-a-token", Device{})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

func TestService_Logout_RevokesAllTokens(t *testing.T) {
	service, _, _, blacklist, _ := newTestService()
	user := registerTestUser(t, service)

	// Two concurrent sessions (e.g. phone and laptop)
	first, err := service.Login(context.Background(), LoginInput{Login: "brainiac", Password: "secret-pass"})
	require.NoError(t, err)
	second, err := service.Login(context.Background(), LoginInput{Login: "brainiac", Password: "secret-pass"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), user.ID))

	assert.Len(t, blacklist.entries, 2, "both outstanding jtis should hit the fast-path blacklist")

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := service.RefreshSession(context.Background(), token, Device{})
		require.Error(t, err)
	}
}

func TestService_Logout_Idempotent(t *testing.T) {
	service, _, _, _, _ := newTestService()
	user := registerTestUser(t, service)

	require.NoError(t, service.Logout(context.Background(), user.ID))
	require.NoError(t, service.Logout(context.Background(), user.ID))
}

func TestService_Check(t *testing.T) {
	service, _, _, _, _ := newTestService()
	user := registerTestUser(t, service)

	found, err := service.Check(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = service.Check(context.Background(), "missing-id")
	require.Error(t, err)
}

func TestService_VerifyEmail(t *testing.T) {
	service, users, _, _, verify := newTestService()
	user := registerTestUser(t, service)

	var token string
	for candidate := range verify.tokens {
		token = candidate
	}
	require.NotEmpty(t, token)

	require.NoError(t, service.VerifyEmail(context.Background(), token))

	assert.True(t, users.users[user.ID].IsVerified)
	assert.Empty(t, verify.tokens, "used token should be deleted")

	// Reuse fails
	require.Error(t, service.VerifyEmail(context.Background(), token))
}
