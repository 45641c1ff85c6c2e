// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the weighted voting API.

# Handler Types

Each handler is a struct holding the governance engine and, for mutating
handlers, the auth.Verifier that resolves callers:

  - AdminHandler: whitelisting, proposal creation, phase changes
  - VotingHandler: vote casting
  - QueryHandler: read-only views of admin, phase, voters and proposals
  - CommandHandler: the typed command envelope

Handlers are created via constructor functions:

	callers := auth.NewVerifier(cfg.RequireSignatures, cfg.SignatureMaxAge, store)
	adminHandler := handlers.NewAdminHandler(eng, callers)

# Session Lifecycle

Voting goes through three phases: inactive → active → ended

	POST /phase/start → StartVoting (inactive only)
	POST /phase/end   → EndVoting (active only)

Ended is terminal.

# Caller Identity

Mutating requests name their caller in the X-Caller-Address header. With
RequireSignatures set they must also carry X-Caller-Timestamp and
X-Caller-Signature, a personal signature over "METHOD PATH\nTIMESTAMP\n"
plus the body (see package auth). A timestamp outside the accepted window
or not newer than the caller's previous one is refused, so a captured
request cannot be replayed.

# Errors

Engine errors map to statuses:

	ErrUnauthorized      → 403
	ErrInvalidArgument   → 400
	ErrNotFound          → 404
	ErrAlreadyVoted      → 409
	ErrNotActive         → 409
	ErrInvalidTransition → 409

A caller that cannot be verified is 401. A body over
1 MiB is 413. The body's message field carries
the engine message, e.g. "Only admin can call this".

# Commands

POST /commands accepts {"op": "...", ...} and decodes it into exactly one
governance.Command:

	whitelistVoter  voter, weight
	createProposal  description
	startVoting
	endVoting
	vote            proposal_id, support
*/
package handlers
