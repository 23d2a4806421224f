// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package auth

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/tomtom215/productrec/internal/logging"
)

// contextKey is the type for context keys in this package
type contextKey string

// UsernameContextKey stores the authenticated admin username.
const UsernameContextKey contextKey = "admin_username"

// UsernameFromContext returns the authenticated admin username, if any.
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(UsernameContextKey).(string) //nolint:errcheck // type assertion, zero value on miss
	return username
}

// Middleware guards admin endpoints with HTTP Basic Authentication and a
// per-client lockout.
type Middleware struct {
	basic          *BasicAuthManager
	lockout        *Lockout
	security       *logging.SecurityLogger
	trustedProxies []netip.Prefix
}

// NewMiddleware creates the admin middleware. A nil basic manager makes
// RequireAdmin reject every request with 403, which is how admin endpoints
// are disabled when no credentials are configured. trustedProxies accepts
// IP addresses and CIDR ranges; invalid entries are logged and skipped.
func NewMiddleware(basic *BasicAuthManager, lockout *Lockout, trustedProxies []string) *Middleware {
	if lockout == nil {
		lockout = NewLockout(DefaultLockoutConfig())
	}
	return &Middleware{
		basic:          basic,
		lockout:        lockout,
		security:       logging.NewSecurityLogger(),
		trustedProxies: parseTrustedProxies(trustedProxies),
	}
}

// Enabled reports whether admin credentials are configured.
func (m *Middleware) Enabled() bool {
	return m.basic != nil
}

// RequireAdmin is middleware that only passes requests carrying the admin
// credentials.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.basic == nil {
			http.Error(w, "Forbidden: admin endpoints are disabled", http.StatusForbidden)
			return
		}

		ip := m.ClientIP(r)
		if locked, remaining := m.lockout.CheckLocked(ip); locked {
			writeLockoutResponse(w, remaining)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.sendBasicAuthChallenge(w, "Unauthorized: authentication required")
			return
		}

		username, err := m.basic.ValidateCredentials(authHeader)
		if err != nil {
			m.security.LogAuthFailure(claimedUsername(authHeader), ip, r.URL.Path, err.Error())
			if locked, remaining := m.lockout.RecordFailure(ip); locked {
				writeLockoutResponse(w, remaining)
				return
			}
			m.sendBasicAuthChallenge(w, "Unauthorized: invalid credentials")
			return
		}

		m.lockout.RecordSuccess(ip)
		m.security.LogAdminAction(r.Method+" "+r.URL.Path, username, ip)

		ctx := context.WithValue(r.Context(), UsernameContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CleanupLockouts drops lockout entries idle for longer than idle and
// returns how many were removed.
func (m *Middleware) CleanupLockouts(idle time.Duration) int {
	return m.lockout.Cleanup(idle)
}

// sendBasicAuthChallenge sends a WWW-Authenticate challenge and error response
func (m *Middleware) sendBasicAuthChallenge(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", m.basic.GetWWWAuthenticateHeader())
	http.Error(w, message, http.StatusUnauthorized)
}

// claimedUsername extracts the username a failed request claimed, for
// security logging only.
func claimedUsername(authHeader string) string {
	encoded, ok := strings.CutPrefix(authHeader, "Basic ")
	if !ok {
		return ""
	}
	raw, err := decodeBasic(encoded)
	if err != nil {
		return ""
	}
	username, _, _ := strings.Cut(raw, ":")
	return username
}

// ClientIP extracts the client IP address, honoring X-Forwarded-For and
// X-Real-IP only when the direct peer is a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if !m.isFromTrustedProxy(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.String()
		}
	}

	return remoteIP
}

// isFromTrustedProxy checks if the remote IP is a trusted proxy
func (m *Middleware) isFromTrustedProxy(remoteIP string) bool {
	if len(m.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(remoteIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func parseTrustedProxies(entries []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				logging.Warn().Str("proxy", entry).Err(err).Msg("Ignoring invalid trusted proxy")
				continue
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logging.Warn().Str("proxy", entry).Err(err).Msg("Ignoring invalid trusted proxy")
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}
