// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The SQL below is the common subset of SQLite and PostgreSQL.
const schema = `
-- Administrator (single row)
CREATE TABLE IF NOT EXISTS governance_admin (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    address TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Session phase (single row)
CREATE TABLE IF NOT EXISTS session_phase (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    phase TEXT NOT NULL DEFAULT 'inactive' CHECK (phase IN ('inactive', 'active', 'ended')),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    id BIGINT PRIMARY KEY CHECK (id >= 0),
    description TEXT NOT NULL,
    total_voting_power_cast BIGINT NOT NULL DEFAULT 0,
    for_votes BIGINT NOT NULL DEFAULT 0,
    against_votes BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (total_voting_power_cast = for_votes + against_votes)
);

-- Voter registry
CREATE TABLE IF NOT EXISTS voter (
    address TEXT PRIMARY KEY,
    is_whitelisted BOOLEAN NOT NULL DEFAULT FALSE,
    weight BIGINT NOT NULL DEFAULT 0 CHECK (weight >= 0),
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    voted_proposal_id BIGINT REFERENCES proposal(id),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voter_voted_proposal_id ON voter(voted_proposal_id);

-- Newest signed request timestamp accepted per caller (unix milliseconds)
CREATE TABLE IF NOT EXISTS caller_timestamp (
    address TEXT PRIMARY KEY,
    last_timestamp BIGINT NOT NULL
);
`
