// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor used when hashing a plaintext admin password.
const bcryptCost = 12

var (
	// ErrNoCredentials is returned when the request carries no Basic credentials.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// BasicAuthManager handles HTTP Basic Authentication for a single account
// with bcrypt password verification.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
	realm        string
}

// NewBasicAuthManager creates a manager from a plaintext password.
// The password is hashed once here so requests only pay for the compare.
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters for security")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &BasicAuthManager{username: username, passwordHash: hash, realm: "Productrec"}, nil
}

// NewBasicAuthManagerFromHash creates a manager from an existing bcrypt hash.
func NewBasicAuthManagerFromHash(username, hash string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}

	return &BasicAuthManager{username: username, passwordHash: []byte(hash), realm: "Productrec"}, nil
}

// Username returns the configured account name.
func (m *BasicAuthManager) Username() string {
	return m.username
}

// ValidateCredentials validates an Authorization header value and returns
// the authenticated username.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrNoCredentials
	}
	encoded, ok := strings.CutPrefix(authHeader, "Basic ")
	if !ok {
		return "", fmt.Errorf("invalid authorization header format")
	}

	credentials, err := decodeBasic(encoded)
	if err != nil {
		return "", err
	}

	username, password, ok := strings.Cut(credentials, ":")
	if !ok {
		return "", fmt.Errorf("invalid credentials format")
	}

	if !m.validateUsernamePassword(username, password) {
		return "", ErrInvalidCredentials
	}

	return username, nil
}

func decodeBasic(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials")
	}
	return string(raw), nil
}

// validateUsernamePassword compares both fields without short-circuiting
// so the response time does not reveal which one was wrong.
func (m *BasicAuthManager) validateUsernamePassword(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

// GetWWWAuthenticateHeader returns the challenge sent with 401 responses.
func (m *BasicAuthManager) GetWWWAuthenticateHeader() string {
	return fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, m.realm)
}
