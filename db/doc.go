// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and persistence of
the governance state.

# Connecting

	conn, err := db.Open(db.TypeSQLite, "file:voting.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite (modernc.org/sqlite, pure Go) is the default. PostgreSQL uses lib/pq.
All SQL is written to run unchanged on both.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - governance_admin: the administrator address (single row)
  - session_phase: inactive, active or ended (single row)
  - proposal: description and weighted tallies, id order = creation order
  - voter: whitelist flag, weight, and the one recorded vote

# Store

Store implements governance.Store:

	store := db.NewStore(conn)
	eng, err := governance.Open(ctx, admin, store)

Load writes the administrator on first use and refuses a database that
belongs to another administrator (ErrAdminMismatch). RecordVote writes the
tally and the voter row in one transaction. Snapshot is a read-only view
used by the tally command.
*/
package db
