// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent represents an authentication or administrative event for
// audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g., "admin_auth", "train_triggered").
	Event string
	// Username is the presented username (masked before logging).
	Username string
	// IPAddress is the client's IP address.
	IPAddress string
	// Path is the request path.
	Path string
	// Success indicates if the operation was successful.
	Success bool
	// Error is the failure reason.
	Error string
}

// SecurityLogger logs security events with sensitive fields masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWithLogger(Logger())
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "security").Logger(),
	}
}

// LogEvent logs a security event. Failures are logged at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}

	e = e.Str("event", event.Event).Str("status", status)
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Path != "" {
		e = e.Str("path", event.Path)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("reason", SanitizeError(event.Error))
	}

	e.Msg("")
}

// LogAuthFailure logs a rejected admin credential.
func (l *SecurityLogger) LogAuthFailure(username, ip, path, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "admin_auth",
		Username:  username,
		IPAddress: ip,
		Path:      path,
		Error:     reason,
	})
}

// LogAdminAction logs a successful administrative operation.
func (l *SecurityLogger) LogAdminAction(action, username, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     action,
		Username:  username,
		IPAddress: ip,
		Success:   true,
	})
}

// SanitizeUsername masks a username, keeping first 2 characters.
// Example: "johndoe" -> "jo***"
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeError replaces messages that mention credentials with a
// generic one and truncates the rest.
func SanitizeError(err string) string {
	lowerErr := strings.ToLower(err)
	for _, pattern := range []string{"password", "secret", "token", "authorization", "hash"} {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
