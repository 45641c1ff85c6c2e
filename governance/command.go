// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Command is one mutating operation. The set of implementations is closed.
type Command interface {
	command()
}

type WhitelistVoterCmd struct {
	Voter  common.Address
	Weight int64
}

type CreateProposalCmd struct {
	Description string
}

type StartVotingCmd struct{}

type EndVotingCmd struct{}

type VoteCmd struct {
	ProposalID int64
	Support    bool
}

func (WhitelistVoterCmd) command() {}
func (CreateProposalCmd) command() {}
func (StartVotingCmd) command()    {}
func (EndVotingCmd) command()      {}
func (VoteCmd) command()           {}

// Result describes what an applied command changed. Only the fields relevant
// to the command are set.
type Result struct {
	Op         string
	ProposalID *int64
	Phase      *Phase
}

// Apply runs cmd on behalf of caller.
func (e *Engine) Apply(ctx context.Context, caller common.Address, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case WhitelistVoterCmd:
		return Result{Op: OpWhitelistVoter}, e.WhitelistVoter(ctx, caller, c.Voter, c.Weight)
	case CreateProposalCmd:
		id, err := e.CreateProposal(ctx, caller, c.Description)
		if err != nil {
			return Result{Op: OpCreateProposal}, err
		}
		return Result{Op: OpCreateProposal, ProposalID: &id}, nil
	case StartVotingCmd:
		if err := e.StartVoting(ctx, caller); err != nil {
			return Result{Op: OpStartVoting}, err
		}
		ph := PhaseActive
		return Result{Op: OpStartVoting, Phase: &ph}, nil
	case EndVotingCmd:
		if err := e.EndVoting(ctx, caller); err != nil {
			return Result{Op: OpEndVoting}, err
		}
		ph := PhaseEnded
		return Result{Op: OpEndVoting, Phase: &ph}, nil
	case VoteCmd:
		id := c.ProposalID
		if err := e.CastVote(ctx, caller, c.ProposalID, c.Support); err != nil {
			return Result{Op: OpVote}, err
		}
		return Result{Op: OpVote, ProposalID: &id}, nil
	default:
		return Result{}, fmt.Errorf("%w: unsupported command %T", ErrInvalidArgument, cmd)
	}
}
