// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). Each request gets an X-Request-ID (kept from the
client when present); handlers read it with RequestID(r.Context()).

# Metrics

WithMetrics reports the status and latency of each request to a
RequestObserver under its route pattern:

	mux.HandleFunc(route, middleware.WithMetrics(m, route, handler))

# CORS Middleware

Cross-origin requests are handled by github.com/rs/cors:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type,
X-Caller-Address, X-Caller-Signature, X-Caller-Timestamp and X-Request-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Logged with every request.
*/
package middleware
