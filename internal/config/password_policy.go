// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy defines requirements for the admin password when it is
// configured in plaintext.
type PasswordPolicy struct {
	// MinLength is the minimum password length in bytes.
	MinLength int

	// RequireUppercase requires at least one uppercase letter
	RequireUppercase bool

	// RequireLowercase requires at least one lowercase letter
	RequireLowercase bool

	// RequireDigit requires at least one digit
	RequireDigit bool

	// RequireSpecial requires at least one punctuation or symbol character
	RequireSpecial bool

	// MaxConsecutiveRepeats is the maximum allowed run of one character (0 = disabled)
	MaxConsecutiveRepeats int

	// ForbidCommonPasswords blocks well-known breached passwords
	ForbidCommonPasswords bool

	// ForbidUsernameSimilarity rejects passwords containing the username
	ForbidUsernameSimilarity bool
}

// DefaultPasswordPolicy returns the policy applied to the admin password
// in production.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                12,
		RequireUppercase:         true,
		RequireLowercase:         true,
		RequireDigit:             true,
		RequireSpecial:           true,
		MaxConsecutiveRepeats:    3,
		ForbidCommonPasswords:    true,
		ForbidUsernameSimilarity: true,
	}
}

// charClasses holds the results of character class analysis.
type charClasses struct {
	hasUpper   bool
	hasLower   bool
	hasDigit   bool
	hasSpecial bool
}

func analyzeCharClasses(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.hasUpper = true
		case unicode.IsLower(r):
			cc.hasLower = true
		case unicode.IsDigit(r):
			cc.hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			cc.hasSpecial = true
		}
	}
	return cc
}

// maxConsecutiveRepeats returns the longest run of a single character.
func maxConsecutiveRepeats(password string) int {
	longest, run := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		last = r
	}
	return longest
}

// Violations returns every rule the password breaks, or nil.
func (p PasswordPolicy) Violations(password, username string) []string {
	var problems []string

	if len(password) < p.MinLength {
		problems = append(problems,
			fmt.Sprintf("password must be at least %d characters (got %d)", p.MinLength, len(password)))
	}

	cc := analyzeCharClasses(password)
	if p.RequireUppercase && !cc.hasUpper {
		problems = append(problems, "password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !cc.hasLower {
		problems = append(problems, "password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !cc.hasDigit {
		problems = append(problems, "password must contain at least one digit")
	}
	if p.RequireSpecial && !cc.hasSpecial {
		problems = append(problems, "password must contain at least one special character (!@#$%^&*...)")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems,
			fmt.Sprintf("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats))
	}

	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "password is too common and easily guessable")
	}

	if p.ForbidUsernameSimilarity && username != "" &&
		strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		problems = append(problems, "password must not contain the username")
	}

	return problems
}

// ValidateWithError returns an error listing every violated rule.
func (p PasswordPolicy) ValidateWithError(password, username string) error {
	if problems := p.Violations(password, username); len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// commonPasswords lists breached passwords (and their trivially decorated
// forms) that must never protect the admin endpoint.
var commonPasswords = map[string]bool{
	"123456":           true,
	"password":         true,
	"123456789":        true,
	"12345678":         true,
	"qwerty":           true,
	"abc123":           true,
	"password1":        true,
	"password123":      true,
	"password123!":     true,
	"admin":            true,
	"admin123":         true,
	"admin@123":        true,
	"letmein":          true,
	"welcome":          true,
	"welcome@123":      true,
	"passw0rd":         true,
	"p@ssw0rd":         true,
	"p@ssw0rd123":      true,
	"iloveyou":         true,
	"trustno1":         true,
	"qwerty123":        true,
	"administrator123": true,
	"changeme123!":     true,
}

func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}
