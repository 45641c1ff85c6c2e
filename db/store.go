// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
)

var (
	ErrAdminMismatch  = errors.New("database belongs to a different administrator")
	ErrNotInitialized = errors.New("database has no governance state")
)

// Store persists governance state in SQL tables created by CreateSchema.
type Store struct {
	db *sql.DB
}

var (
	_ governance.Store = (*Store)(nil)
	_ auth.ReplayGuard = (*Store)(nil)
)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Load returns the state owned by admin, writing the administrator and the
// initial phase on first use.
func (s *Store) Load(ctx context.Context, admin common.Address) (*governance.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRowContext(ctx, `SELECT address FROM governance_admin WHERE id = 1`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		now := time.Now()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO governance_admin (id, address, created_at) VALUES (1, $1, $2)
		`, admin.Hex(), now); err != nil {
			return nil, fmt.Errorf("failed to insert administrator: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_phase (id, phase, updated_at) VALUES (1, $1, $2)
		`, governance.PhaseInactive.String(), now); err != nil {
			return nil, fmt.Errorf("failed to insert session phase: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query administrator: %w", err)
	case common.HexToAddress(stored) != admin:
		return nil, fmt.Errorf("%w: stored %s, configured %s", ErrAdminMismatch, stored, admin.Hex())
	}

	snap, err := readSnapshot(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return snap, nil
}

// Snapshot reads the persisted state without initialising anything.
func (s *Store) Snapshot(ctx context.Context) (*governance.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	return readSnapshot(ctx, tx)
}

func readSnapshot(ctx context.Context, q querier) (*governance.Snapshot, error) {
	snap := &governance.Snapshot{Voters: make(map[common.Address]governance.Voter)}

	var admin, phase string
	err := q.QueryRowContext(ctx, `
		SELECT a.address, p.phase
		FROM governance_admin a, session_phase p
		WHERE a.id = 1 AND p.id = 1
	`).Scan(&admin, &phase)
	if err == sql.ErrNoRows {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query governance state: %w", err)
	}
	snap.Admin = common.HexToAddress(admin)
	if snap.Phase, err = governance.ParsePhase(phase); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, description, total_voting_power_cast, for_votes, against_votes
		FROM proposal
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p governance.Proposal
		if err := rows.Scan(&p.ID, &p.Description, &p.TotalVotingPowerCast, &p.ForVotes, &p.AgainstVotes); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		snap.Proposals = append(snap.Proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proposals: %w", err)
	}

	vrows, err := q.QueryContext(ctx, `
		SELECT address, is_whitelisted, weight, has_voted, voted_proposal_id
		FROM voter
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer vrows.Close()
	for vrows.Next() {
		var (
			addr  string
			voted sql.NullInt64
			v     governance.Voter
		)
		if err := vrows.Scan(&addr, &v.Whitelisted, &v.Weight, &v.HasVoted, &voted); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		v.Address = common.HexToAddress(addr)
		if voted.Valid {
			id := voted.Int64
			v.VotedProposalID = &id
		}
		snap.Voters[v.Address] = v
	}
	if err := vrows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read voters: %w", err)
	}

	return snap, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertVoter(ctx context.Context, e execer, v governance.Voter) error {
	var voted any
	if v.VotedProposalID != nil {
		voted = *v.VotedProposalID
	}
	_, err := e.ExecContext(ctx, `
		INSERT INTO voter (address, is_whitelisted, weight, has_voted, voted_proposal_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			is_whitelisted = excluded.is_whitelisted,
			weight = excluded.weight,
			has_voted = excluded.has_voted,
			voted_proposal_id = excluded.voted_proposal_id,
			updated_at = excluded.updated_at
	`, v.Address.Hex(), v.Whitelisted, v.Weight, v.HasVoted, voted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert voter: %w", err)
	}
	return nil
}

func (s *Store) SaveVoter(ctx context.Context, v governance.Voter) error {
	return upsertVoter(ctx, s.db, v)
}

func (s *Store) AppendProposal(ctx context.Context, p governance.Proposal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposal (id, description, total_voting_power_cast, for_votes, against_votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Description, p.TotalVotingPowerCast, p.ForVotes, p.AgainstVotes, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

func (s *Store) SavePhase(ctx context.Context, p governance.Phase) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE session_phase SET phase = $1, updated_at = $2 WHERE id = 1
	`, p.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update session phase: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return ErrNotInitialized
	}
	return nil
}

// RecordVote updates the tally and the voter in one transaction.
func (s *Store) RecordVote(ctx context.Context, p governance.Proposal, v governance.Voter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE proposal
		SET total_voting_power_cast = $1, for_votes = $2, against_votes = $3
		WHERE id = $4
	`, p.TotalVotingPowerCast, p.ForVotes, p.AgainstVotes, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update tally: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("failed to update tally: proposal %d not stored", p.ID)
	}

	if err := upsertVoter(ctx, tx, v); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AdvanceTimestamp moves the caller's last accepted timestamp to ts, or fails
// with auth.ErrReplayed when ts is not newer than the stored one.
func (s *Store) AdvanceTimestamp(ctx context.Context, caller common.Address, ts int64) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO caller_timestamp (address, last_timestamp)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET last_timestamp = excluded.last_timestamp
		WHERE caller_timestamp.last_timestamp < excluded.last_timestamp
	`, caller.Hex(), ts)
	if err != nil {
		return fmt.Errorf("failed to record caller timestamp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record caller timestamp: %w", err)
	}
	if n == 0 {
		return auth.ErrReplayed
	}
	return nil
}
