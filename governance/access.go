// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Admin returns the administrator fixed when the engine was opened.
func (e *Engine) Admin() common.Address {
	return e.admin
}

// IsAdministrator reports whether id is the administrator.
func (e *Engine) IsAdministrator(id common.Address) bool {
	return id == e.admin
}

// requireAdmin is the one place admin-only operations check their caller.
func (e *Engine) requireAdmin(caller common.Address) error {
	if !e.IsAdministrator(caller) {
		return fail(ErrUnauthorized, MsgOnlyAdmin)
	}
	return nil
}

// eligible returns the registry entry for caller if it may vote at all.
// It does not look at HasVoted.
func (e *Engine) eligible(caller common.Address) (Voter, error) {
	v, ok := e.voters[caller]
	if !ok || !v.Whitelisted {
		return Voter{}, fail(ErrUnauthorized, MsgOnlyWhitelisted)
	}
	return v, nil
}

// WhitelistVoter grants voter eligibility with the given weight. Calling it
// again for the same voter overwrites the weight but keeps whether, and on
// which proposal, the voter has already voted.
func (e *Engine) WhitelistVoter(ctx context.Context, caller, voter common.Address, weight int64) (err error) {
	defer func() { e.rec.Op(OpWhitelistVoter, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if weight < 1 {
		return fail(ErrInvalidArgument, "weight must be at least 1")
	}
	if voter == (common.Address{}) {
		return fail(ErrInvalidArgument, "voter address is required")
	}

	v := copyVoter(e.voters[voter])
	v.Address = voter
	v.Whitelisted = true
	v.Weight = weight

	if err := e.store.SaveVoter(ctx, v); err != nil {
		return err
	}
	e.voters[voter] = v
	return nil
}

// VoterInfo returns the registry entry for voter. Unknown voters get the
// zero record with Address set.
func (e *Engine) VoterInfo(voter common.Address) Voter {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.voters[voter]
	if !ok {
		return Voter{Address: voter}
	}
	return copyVoter(v)
}
