// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own their flag set (see main.go) declare the flags with
NewFlagSet and resolve them with FromFlags.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file URL or PostgreSQL connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - AdminAddress: the single governance administrator (required)
  - RequireSignatures: demand X-Caller-Signature on mutating requests
  - LogLevel: debug, info, warn or error (default: info)
  - CORSOrigins: allowed origins (default: *)

# CLI Flags

	-p, --port               Server port
	-d, --database-url       Database URL
	-t, --database-type      sqlite or postgres
	--admin                  Administrator address
	--require-signatures     Require signed requests
	--signature-max-age      Accepted clock skew of signed requests (default 5m)
	--log-level              Log level
	--cors-origins           Comma separated origins
	--env-file               Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	ADMIN_ADDRESS      → --admin
	REQUIRE_SIGNATURES → --require-signatures
	SIGNATURE_MAX_AGE  → --signature-max-age
	LOG_LEVEL          → --log-level
	CORS_ORIGINS       → --cors-origins
	ENV_FILE           → --env-file

The env file is loaded first and never overrides variables already set.
CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - ADMIN_ADDRESS is missing, malformed or the zero address
  - DATABASE_TYPE is not sqlite or postgres
  - PORT is out of range
*/
package cliparse
