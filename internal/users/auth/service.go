// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
token lifecycle management via RSA-signed JWT pairs with rotation.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh, Logout).
  - Repository: Abstracted interfaces for Postgres (Users, RefreshTokens) and
    Redis (jti blacklist, verification tokens).
  - Security: Leverages Bcrypt hashing and RSA-signed JWTs.

Refresh tokens are single-use: each refresh blacklists the presented token and
issues a new pair. Logout blacklists every outstanding token for the user.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/internal/platform/sec"
	"github.com/mindmeld/server/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)

	// GenerateRefreshToken creates a signed refresh JWT carrying a unique jti.
	GenerateRefreshToken(userID, jti string, timeToLive time.Duration) (string, error)

	// VerifyRefreshToken validates signature and expiry of a refresh JWT.
	VerifyRefreshToken(tokenString string) (*sec.RefreshClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	refreshTokenRepository      RefreshTokenRepository
	blacklistRepository         BlacklistRepository
	verificationTokenRepository VerificationTokenRepository
	tokenProvider               TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	refreshRepo RefreshTokenRepository,
	blacklistRepo BlacklistRepository,
	verifyRepo VerificationTokenRepository,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		userRepository:              userRepo,
		refreshTokenRepository:      refreshRepo,
		blacklistRepository:         blacklistRepo,
		verificationTokenRepository: verifyRepo,
		tokenProvider:               tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Age        int
	Profession *string
	Device     Device
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling password hashing and
initial verification token state. A successful enrollment starts a session
immediately, so the response carries a token pair alongside the user.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *TokenPair: Fresh session for the created account (User embedded)
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*TokenPair, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Age:          input.Age,
		Profession:   input.Profession,
		Role:         sec.RoleMember,
		IsVerified:   false,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
		// TODO: Trigger email service with the verification link
	}

	return service.issueTokenPair(context, user, input.Device)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
	Device   Device
}

// TokenPair represents a successfully issued access/refresh token pair.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues a token pair.

Description: Verifies identity, performs constant-time password comparison,
and issues a fresh access/refresh pair with a tracked refresh jti.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	var user *User
	var err error
	// Flexible login: look up by Email or Username
	user, err = service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(context, input.Login)
	}

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueTokenPair(context, user, input.Device)
}

// issueTokenPair generates a fresh access/refresh pair and persists the refresh record.
func (service *Service) issueTokenPair(context context.Context, user *User, device Device) (*TokenPair, error) {

	// Generate short-lived Access Token
	accessExpiresAt := time.Now().Add(AccessTokenTTL)
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token with a unique, trackable jti
	jti := uuid.New()
	refreshExpiresAt := time.Now().Add(RefreshTokenTTL)
	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID, jti, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Persist the tracking record for rotation and revocation
	record := &RefreshToken{
		ID:            uuid.New(),
		UserID:        user.ID,
		JTI:           jti,
		UserAgent:     device.UserAgent,
		IPAddress:     device.IPAddress,
		ExpiresAt:     refreshExpiresAt,
		IsBlacklisted: false,
	}

	if err := service.refreshTokenRepository.Create(context, record); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_record_creation_failed: %w", err)
	}

	// Issuing a pair counts as account activity; a failed touch never blocks a login
	_ = service.userRepository.TouchActivity(context, user.ID)

	return &TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
		User:                  user,
	}, nil
}

// # Token Rotation

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the presented refresh token against signature, expiry,
the fast-path blacklist, and the persistent record, then blacklists it to
prevent reuse (replay attack mitigation) and issues a fresh rotated pair.

Parameters:
  - context: context.Context
  - refreshToken: string
  - device: Device

Returns:
  - *TokenPair: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string, device Device) (*TokenPair, error) {

	// Verify signature and expiry of the refresh JWT
	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Fast path: reject tokens already on the blacklist
	blacklisted, err := service.blacklistRepository.Exists(context, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_blacklist_check_failed: %w", err)
	}
	if blacklisted {
		return nil, apperr.Unauthorized("Refresh token has been revoked")
	}

	// Resolve the persistent record. Missing or blacklisted records mean the
	// token was rotated away, revoked, or never issued by us.
	record, err := service.refreshTokenRepository.FindByJTI(context, claims.ID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: blacklist the presented token in both stores before issuing
	// the replacement. The Redis entry carries the remaining lifetime so the
	// blacklist prunes itself.
	if err := service.refreshTokenRepository.Blacklist(context, record.JTI); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_blacklist_failed: %w", err)
	}
	if remaining := time.Until(record.ExpiresAt); remaining > 0 {
		_ = service.blacklistRepository.Add(context, record.JTI, remaining)
	}

	// Fetch the user associated with this token
	user, err := service.userRepository.FindByID(context, record.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	return service.issueTokenPair(context, user, device)
}

// # Revocation

/*
Logout revokes every outstanding refresh token for the user.

Description: Global sign-out. Each active token's jti is pushed to the
fast-path blacklist with its remaining lifetime, then the persistent records
are blacklisted in bulk. The operation is idempotent.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, userID string) error {

	// Collect active tokens so their jtis can be propagated to the fast path
	tokens, err := service.refreshTokenRepository.ListActiveByUser(context, userID)
	if err != nil {
		return fmt.Errorf("auth_service_logout_list_failed: %w", err)
	}

	for _, token := range tokens {
		if remaining := time.Until(token.ExpiresAt); remaining > 0 {
			_ = service.blacklistRepository.Add(context, token.JTI, remaining)
		}
	}

	// Bulk-blacklist the persistent records
	if err := service.refreshTokenRepository.BlacklistAllForUser(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Introspection

/*
Check resolves the authenticated user's current profile.

Description: Backs the lightweight session-validity probe. The access token
has already been verified by middleware; this confirms the account still exists.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated account entity
  - err: Unauthorized when the account is gone
*/
func (service *Service) Check(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer exists")
	}
	return user, nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
