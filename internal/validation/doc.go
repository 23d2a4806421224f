// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is created lazily and shared across
// goroutines; it caches struct metadata after the first use. Field errors
// are translated into readable messages and can be converted to the API
// error body with ToAPIError.
//
// # Custom Tags
//
//   - entityid: a user or product identifier. Must contain a non-space
//     character, be at most MaxEntityIDLength bytes and contain no control
//     characters.
//
// # Usage
//
//	type recommendRequest struct {
//	    UserID string `validate:"entityid"`
//	    Count  int    `validate:"gte=0,lte=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
