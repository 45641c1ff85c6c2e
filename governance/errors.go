// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure returned by the Engine wraps exactly one of
// these, so callers should match with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrNotActive         = errors.New("voting not active")
	ErrInvalidTransition = errors.New("invalid phase transition")
)

// Messages surfaced to clients alongside the error kind.
const (
	MsgOnlyAdmin       = "Only admin can call this"
	MsgOnlyWhitelisted = "Only whitelisted voters can vote"
	MsgAlreadyVoted    = "Already voted"
	MsgNotActive       = "Voting is not active"
	MsgInvalidProposal = "Invalid proposal"
)

func fail(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Kind returns the sentinel wrapped by err, or nil when err is not one of
// the governance error kinds (for example a storage failure).
func Kind(err error) error {
	for _, k := range []error{
		ErrUnauthorized,
		ErrInvalidArgument,
		ErrNotFound,
		ErrAlreadyVoted,
		ErrNotActive,
		ErrInvalidTransition,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message strips the kind prefix and returns the human readable part of a
// governance error.
func Message(err error) string {
	k := Kind(err)
	if k == nil {
		return err.Error()
	}
	return strings.TrimPrefix(err.Error(), k.Error()+": ")
}
