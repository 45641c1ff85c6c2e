// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Operation names reported to a Recorder.
const (
	OpWhitelistVoter = "whitelist_voter"
	OpCreateProposal = "create_proposal"
	OpStartVoting    = "start_voting"
	OpEndVoting      = "end_voting"
	OpVote           = "vote"
)

// Recorder observes the outcome of mutating operations.
type Recorder interface {
	Op(op string, err error)
	VoteCast(support bool, weight int64)
}

type nopRecorder struct{}

func (nopRecorder) Op(string, error)     {}
func (nopRecorder) VoteCast(bool, int64) {}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder reports operation outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// Engine owns the administrator, voter registry, proposal ledger and session
// phase. Mutations are serialized under one write lock and persisted before
// they become visible; reads share a read lock and return copies.
type Engine struct {
	mu    sync.RWMutex
	store Store
	rec   Recorder

	admin     common.Address
	voters    map[common.Address]Voter
	proposals []Proposal
	phase     Phase
}

// Open loads the state owned by admin from store and returns a ready engine.
func Open(ctx context.Context, admin common.Address, store Store, opts ...Option) (*Engine, error) {
	if admin == (common.Address{}) {
		return nil, fail(ErrInvalidArgument, "administrator address is required")
	}
	if store == nil {
		store = NopStore{}
	}

	snap, err := store.Load(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("failed to load governance state: %w", err)
	}
	if snap.Admin != admin {
		return nil, fmt.Errorf("stored administrator %s does not match %s", snap.Admin.Hex(), admin.Hex())
	}
	if err := checkSnapshot(snap); err != nil {
		return nil, err
	}

	e := &Engine{
		store:     store,
		rec:       nopRecorder{},
		admin:     admin,
		voters:    make(map[common.Address]Voter, len(snap.Voters)),
		proposals: append([]Proposal(nil), snap.Proposals...),
		phase:     snap.Phase,
	}
	for addr, v := range snap.Voters {
		v.Address = addr
		e.voters[addr] = copyVoter(v)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func checkSnapshot(snap *Snapshot) error {
	for i, p := range snap.Proposals {
		if p.ID != int64(i) {
			return fmt.Errorf("corrupt state: proposal at position %d has id %d", i, p.ID)
		}
		if p.TotalVotingPowerCast != p.ForVotes+p.AgainstVotes {
			return fmt.Errorf("corrupt state: proposal %d tally %d != %d + %d",
				p.ID, p.TotalVotingPowerCast, p.ForVotes, p.AgainstVotes)
		}
	}
	for addr, v := range snap.Voters {
		if v.HasVoted != (v.VotedProposalID != nil) {
			return fmt.Errorf("corrupt state: voter %s voted flag disagrees with voted proposal", addr.Hex())
		}
	}
	if snap.Phase > PhaseEnded {
		return fmt.Errorf("corrupt state: %s", snap.Phase)
	}
	return nil
}
