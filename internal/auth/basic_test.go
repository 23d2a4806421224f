// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func basicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// newTestManager builds a manager from a low-cost hash to keep tests fast.
func newTestManager(t *testing.T, username, password string) *BasicAuthManager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewBasicAuthManagerFromHash(username, string(hash))
	if err != nil {
		t.Fatalf("NewBasicAuthManagerFromHash() error: %v", err)
	}
	return m
}

func TestNewBasicAuthManager(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "longenough", false},
		{"empty username", "", "longenough", true},
		{"empty password", "admin", "", true},
		{"short password", "admin", "short", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewBasicAuthManager(tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBasicAuthManager() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && m.Username() != tt.username {
				t.Errorf("Username() = %q, want %q", m.Username(), tt.username)
			}
		})
	}
}

func TestNewBasicAuthManagerFromHash(t *testing.T) {
	if _, err := NewBasicAuthManagerFromHash("admin", "plaintext"); err == nil {
		t.Error("expected error for non-bcrypt hash")
	}
	if _, err := NewBasicAuthManagerFromHash("", "$2a$04$abcdefghijklmnopqrstuu"); err == nil {
		t.Error("expected error for empty username")
	}
}

func TestValidateCredentials(t *testing.T) {
	m := newTestManager(t, "admin", "correct horse")

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid", basicHeader("admin", "correct horse"), nil},
		{"wrong password", basicHeader("admin", "battery staple"), ErrInvalidCredentials},
		{"wrong username", basicHeader("root", "correct horse"), ErrInvalidCredentials},
		{"empty header", "", ErrNoCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, err := m.ValidateCredentials(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateCredentials() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && username != "admin" {
				t.Errorf("username = %q, want admin", username)
			}
		})
	}

	malformed := []string{
		"Bearer token",
		"Basic !!!not-base64!!!",
		"Basic " + base64.StdEncoding.EncodeToString([]byte("no-colon")),
	}
	for _, header := range malformed {
		if _, err := m.ValidateCredentials(header); err == nil {
			t.Errorf("ValidateCredentials(%q) should fail", header)
		}
	}
}

func TestPasswordWithColon(t *testing.T) {
	m := newTestManager(t, "admin", "pa:ss:word")
	if _, err := m.ValidateCredentials(basicHeader("admin", "pa:ss:word")); err != nil {
		t.Errorf("password containing colons rejected: %v", err)
	}
}

func TestGetWWWAuthenticateHeader(t *testing.T) {
	m := newTestManager(t, "admin", "password")
	header := m.GetWWWAuthenticateHeader()
	if !strings.HasPrefix(header, `Basic realm="Productrec"`) {
		t.Errorf("GetWWWAuthenticateHeader() = %q", header)
	}
}
