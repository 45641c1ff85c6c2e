// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package governance implements weighted, permissioned voting.

# Engine

An Engine owns the whole state: one administrator, the voter registry,
the proposal ledger and the session phase.

	eng, err := governance.Open(ctx, admin, store)

The administrator is fixed at Open and never changes. The store hands over
any previously persisted state; governance.NopStore{} keeps everything in
memory.

# Operations

Administrator only:

  - WhitelistVoter(ctx, caller, voter, weight): upsert, weight >= 1
  - CreateProposal(ctx, caller, description): returns the new id
  - StartVoting(ctx, caller): inactive → active
  - EndVoting(ctx, caller): active → ended

Voters:

  - CastVote(ctx, caller, proposalID, support)
  - Vote(ctx, caller, proposalID, support), which also returns the updated proposal

Reads, open to anyone:

  - Admin, IsAdministrator, VoterInfo, Proposal, ProposalsCount, Proposals, Phase

Apply runs the typed Command variants (WhitelistVoterCmd, CreateProposalCmd,
StartVotingCmd, EndVotingCmd, VoteCmd) through the same methods.

# Voting Rules

The phase is global. Ended is terminal.

Each voter votes once, ever: after one successful CastVote every further
call from that voter fails with ErrAlreadyVoted, whatever the proposal.
Re-whitelisting does not reset this.

CastVote checks, in order: phase active, caller whitelisted, caller has not
voted, proposal exists.

# Errors

	ErrUnauthorized      caller is not admin / not whitelisted
	ErrInvalidArgument   bad weight, empty description, tally overflow
	ErrNotFound          unknown proposal
	ErrAlreadyVoted      voter already used their vote
	ErrNotActive         phase is not active
	ErrInvalidTransition start/end called from the wrong phase

Failed calls change nothing, including when the store fails.
*/
package governance
