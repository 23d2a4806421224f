// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package api provides the HTTP interface of the recommendation service.

Routes are registered on a chi router by Router.Setup:

	GET  /recommend/{userID}?count=N                      compact form
	GET  /api/v1/recommendations/user/{userID}?count=N    scored, with metadata
	GET  /api/v1/recommendations/user/{userID}/neighbors?k=N
	GET  /api/v1/recommendations/status
	GET  /api/v1/recommendations/config
	POST /api/v1/recommendations/train                    admin
	GET  /api/v1/admin/performance                        admin
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics

The compact endpoint answers {"user_id": "...", "recommendations": [...]}
and {"error": "User not found"} with status 404 for unknown users. Every
/api/v1 endpoint uses the APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "request_id": "...", "query_time_ms": 1}
	}

An empty or missing model is not an error for the recommendation
endpoints: they return an empty list, with outcome "empty_catalog" in the
envelope form. Readiness reports 503 until a model is active.

# Training

POST /api/v1/recommendations/train requires the admin credentials (HTTP
Basic) and returns 202 once a retrain is queued with the Trainer. It
answers 409 while a retrain is running or queued and 429 when the previous
manual retrain was accepted less than the manual train interval ago.

# Middleware

Every request gets an X-Request-ID, an access log line, panic recovery,
CORS handling and Prometheus instrumentation. Route groups add per-client
rate limits (go-chi/httprate), security headers and gzip compression.
*/
package api
