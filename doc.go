// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the weighted voting service.

A single administrator whitelists voters with integer weights, appends
proposals and opens and closes one global voting window. Every whitelisted
voter casts exactly one weighted for/against vote.

# Commands

	weighted-voting [serve]  run the HTTP API (default)
	weighted-voting tally    print the ledger and tallies as a table

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ADMIN_ADDRESS=0x... DATABASE_URL=governance.db go run .

Or with flags:

	go run . serve -p 3318 -d governance.db --admin 0x...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_ADDRESS (--admin): administrator address, fixed for the database's lifetime

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REQUIRE_SIGNATURES (--require-signatures): demand X-Caller-Signature
  - LOG_LEVEL (--log-level): debug, info, warn, error
  - CORS_ORIGINS (--cors-origins): comma separated origins (default: *)
  - ENV_FILE (--env-file): dotenv file read first (default: .env)

# Architecture

  - governance: the voting engine (registry, ledger, session, tally, commands)
  - db: schema and SQL-backed store
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Request/response types
  - auth: caller addresses and request signatures
  - metrics: Prometheus collectors
  - cliparse: Configuration parsing
  - logging: slog setup

See package documentation for each component.
*/
package main
