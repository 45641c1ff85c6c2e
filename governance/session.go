// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Phase returns the current session phase.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.phase
}

// StartVoting opens the session. Only valid while Inactive.
func (e *Engine) StartVoting(ctx context.Context, caller common.Address) (err error) {
	defer func() { e.rec.Op(OpStartVoting, err) }()
	return e.transition(ctx, caller, PhaseInactive, PhaseActive)
}

// EndVoting closes the session for good. Only valid while Active.
func (e *Engine) EndVoting(ctx context.Context, caller common.Address) (err error) {
	defer func() { e.rec.Op(OpEndVoting, err) }()
	return e.transition(ctx, caller, PhaseActive, PhaseEnded)
}

func (e *Engine) transition(ctx context.Context, caller common.Address, from, to Phase) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if e.phase != from {
		return fail(ErrInvalidTransition, "cannot move from "+e.phase.String()+" to "+to.String())
	}
	if err := e.store.SavePhase(ctx, to); err != nil {
		return err
	}
	e.phase = to
	return nil
}
