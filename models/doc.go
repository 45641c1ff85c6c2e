// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request and response types for the API.

# Request Types

Types for parsing incoming JSON:

  - WhitelistVoterRequest: voter, weight
  - CreateProposalRequest: description
  - VoteRequest: support (required)
  - CommandRequest: op plus the fields of that op

# Response Types

Types for JSON responses:

  - AdminResponse: admin
  - PhaseResponse: phase
  - CreateProposalResponse: proposal_id
  - ProposalsCountResponse: count
  - VoteResponse: proposal_id, proposal, message
  - CommandResponse: op, proposal_id, phase
  - VoterResponse: address, is_whitelisted, weight, has_voted, voted_proposal_id
  - ProposalResponse: tallies plus for/against percentages
  - ProposalListResponse: phase, count, proposals
  - ErrorResponse: error, message

Domain values come from package governance; NewVoterResponse and
NewProposalResponse convert them. Phases marshal as "inactive", "active"
or "ended".

# Command Ops

	OpWhitelistVoter = "whitelistVoter"
	OpCreateProposal = "createProposal"
	OpStartVoting    = "startVoting"
	OpEndVoting      = "endVoting"
	OpVote           = "vote"
*/
package models
