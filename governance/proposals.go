// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CreateProposal appends a proposal with zeroed tallies and returns its id,
// which is always the proposal count before the call.
func (e *Engine) CreateProposal(ctx context.Context, caller common.Address, description string) (id int64, err error) {
	defer func() { e.rec.Op(OpCreateProposal, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return 0, err
	}
	if strings.TrimSpace(description) == "" {
		return 0, fail(ErrInvalidArgument, "description is required")
	}

	p := Proposal{
		ID:          int64(len(e.proposals)),
		Description: description,
	}
	if err := e.store.AppendProposal(ctx, p); err != nil {
		return 0, err
	}
	e.proposals = append(e.proposals, p)
	return p.ID, nil
}

// Proposal returns the proposal with the given id.
func (e *Engine) Proposal(id int64) (Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.proposalLocked(id)
}

func (e *Engine) proposalLocked(id int64) (Proposal, error) {
	if id < 0 || id >= int64(len(e.proposals)) {
		return Proposal{}, fail(ErrNotFound, MsgInvalidProposal)
	}
	return e.proposals[id], nil
}

// ProposalsCount returns how many proposals exist.
func (e *Engine) ProposalsCount() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return int64(len(e.proposals))
}

// Proposals returns every proposal in id order.
func (e *Engine) Proposals() []Proposal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]Proposal(nil), e.proposals...)
}
