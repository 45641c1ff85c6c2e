// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the weighted voting API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng, callers, m, registry)

Every API route is wrapped with middleware.WithLogging and, when m is
non-nil, middleware.WithMetrics under its pattern.

# Endpoints

Health:

	GET /health

Administration (admin caller):

	POST /phase/start - Open voting
	POST /phase/end   - Close voting for good
	POST /voters      - Whitelist or reweight a voter
	POST /proposals   - Append a proposal

Voting (whitelisted caller):

	POST /proposals/{id}/votes - Cast the caller's single vote

Commands:

	POST /commands - Typed command envelope

Reads (public):

	GET /admin             - Administrator address
	GET /phase             - Current phase
	GET /voters/{address}  - Voter record
	GET /proposals         - All proposals with shares
	GET /proposals/count   - Number of proposals
	GET /proposals/{id}    - One proposal

Metrics (when a gatherer is given):

	GET /metrics
*/
package router
