// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package auth implements the user identity and token lifecycle layer.

It defines the core domain entities (User, RefreshToken) and logic for
authentication, token rotation, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/mindmeld/server/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the MindMeld platform.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Age          int          `json:"age"`
	Profession   *string      `json:"profession,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// RefreshToken represents an issued refresh token tracked for rotation and revocation.
//
// The token itself is a signed JWT held by the client; only its unique ID (jti)
// is persisted server-side. Blacklisting the jti invalidates the token before
// its natural expiry.
type RefreshToken struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	JTI           string    `json:"-"` // Token identifier. Omitted for security.
	UserAgent     string    `json:"user_agent"`
	IPAddress     string    `json:"ip_address"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	CreatedAt     time.Time `json:"created_at"`
}

// Device captures the client fingerprint recorded with each issued token.
type Device struct {
	UserAgent string
	IPAddress string
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldAge           = "age"
	FieldLogin         = "login"
	FieldToken         = "token"
	FieldAccessToken   = "access_token"
	FieldTokenType     = "token_type"
	FieldExpiresIn     = "expires_in"
	FieldUser          = "user"
	FieldMessage       = "message"
	FieldAuthenticated = "authenticated"
)
