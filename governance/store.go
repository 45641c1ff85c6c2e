// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Store persists the governance state. Each write method must be atomic on
// its own: the Engine calls it before changing memory and drops the change
// if it returns an error.
type Store interface {
	// Load returns the persisted state for admin, initialising an empty
	// state on first use. It must fail if the state belongs to another admin.
	Load(ctx context.Context, admin common.Address) (*Snapshot, error)
	SaveVoter(ctx context.Context, v Voter) error
	AppendProposal(ctx context.Context, p Proposal) error
	SavePhase(ctx context.Context, p Phase) error
	// RecordVote writes the updated proposal tally and voter record together.
	RecordVote(ctx context.Context, p Proposal, v Voter) error
}

// NopStore keeps nothing. Engines built on it live only in memory.
type NopStore struct{}

var _ Store = NopStore{}

func (NopStore) Load(_ context.Context, admin common.Address) (*Snapshot, error) {
	return &Snapshot{Admin: admin, Voters: map[common.Address]Voter{}}, nil
}

func (NopStore) SaveVoter(context.Context, Voter) error            { return nil }
func (NopStore) AppendProposal(context.Context, Proposal) error    { return nil }
func (NopStore) SavePhase(context.Context, Phase) error            { return nil }
func (NopStore) RecordVote(context.Context, Proposal, Voter) error { return nil }
