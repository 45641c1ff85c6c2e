// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"
	"math"

	"github.com/ethereum/go-ethereum/common"
)

// CastVote adds caller's weight to proposalID's tally. A voter gets exactly
// one vote for the lifetime of the engine, across all proposals.
//
// Checks run in a fixed order and the first failure wins: phase, whitelist,
// already voted, proposal existence.
func (e *Engine) CastVote(ctx context.Context, caller common.Address, proposalID int64, support bool) error {
	_, err := e.Vote(ctx, caller, proposalID, support)
	return err
}

// Vote is CastVote returning the proposal as this vote left it, before any
// later vote lands.
func (e *Engine) Vote(ctx context.Context, caller common.Address, proposalID int64, support bool) (_ Proposal, err error) {
	defer func() { e.rec.Op(OpVote, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseActive {
		return Proposal{}, fail(ErrNotActive, MsgNotActive)
	}
	v, err := e.eligible(caller)
	if err != nil {
		return Proposal{}, err
	}
	if v.HasVoted {
		return Proposal{}, fail(ErrAlreadyVoted, MsgAlreadyVoted)
	}
	p, err := e.proposalLocked(proposalID)
	if err != nil {
		return Proposal{}, err
	}
	if p.TotalVotingPowerCast > math.MaxInt64-v.Weight {
		return Proposal{}, fail(ErrInvalidArgument, "tally overflow")
	}

	p.TotalVotingPowerCast += v.Weight
	if support {
		p.ForVotes += v.Weight
	} else {
		p.AgainstVotes += v.Weight
	}
	id := p.ID
	v = copyVoter(v)
	v.HasVoted = true
	v.VotedProposalID = &id

	if err := e.store.RecordVote(ctx, p, v); err != nil {
		return Proposal{}, err
	}
	e.proposals[p.ID] = p
	e.voters[caller] = v
	e.rec.VoteCast(support, v.Weight)
	return p, nil
}
