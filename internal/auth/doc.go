// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package auth protects administrative endpoints (model retraining) with
HTTP Basic Authentication.

A single admin account is configured through ADMIN_USERNAME and either
ADMIN_PASSWORD (hashed with bcrypt at startup) or ADMIN_PASSWORD_HASH.
Credentials are compared in constant time for the username and with
bcrypt for the password.

Repeated failures from the same client IP lock that client out for
LockoutConfig.LockoutDuration, doubling on each subsequent lockout up to
MaxLockoutDuration. Locked clients receive 429 with a Retry-After header.

Client IPs are taken from X-Forwarded-For or X-Real-IP only when the
direct peer is listed in TRUSTED_PROXIES (addresses or CIDR ranges).

Failures and successful admin actions are recorded through
logging.SecurityLogger.

Usage:

	basic, err := auth.NewBasicAuthManager(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(basic, nil, cfg.Security.TrustedProxies)
	r.With(mw.RequireAdmin).Post("/api/v1/recommendations/train", h.Train)
*/
package auth
