package models

import "github.com/danielhkuo/weighted-voting/governance"

// Command envelope op names, matching the client-facing method names
const (
	OpWhitelistVoter = "whitelistVoter"
	OpCreateProposal = "createProposal"
	OpStartVoting    = "startVoting"
	OpEndVoting      = "endVoting"
	OpVote           = "vote"
)

// Op names of read endpoints, used as log labels only
const (
	OpGetProposal = "getProposal"
)

// Request types

type WhitelistVoterRequest struct {
	Voter  string `json:"voter"`
	Weight int64  `json:"weight"`
}

type CreateProposalRequest struct {
	Description string `json:"description"`
}

// Support is a pointer so a missing field can be told apart from false
type VoteRequest struct {
	Support *bool `json:"support"`
}

// Only the fields used by Op are read
type CommandRequest struct {
	Op          string `json:"op"`
	Voter       string `json:"voter,omitempty"`
	Weight      int64  `json:"weight,omitempty"`
	Description string `json:"description,omitempty"`
	ProposalID  *int64 `json:"proposal_id,omitempty"`
	Support     *bool  `json:"support,omitempty"`
}

// Response types

type AdminResponse struct {
	Admin string `json:"admin"`
}

type PhaseResponse struct {
	Phase governance.Phase `json:"phase"`
}

type CreateProposalResponse struct {
	ProposalID int64 `json:"proposal_id"`
}

type ProposalsCountResponse struct {
	Count int64 `json:"count"`
}

type VoteResponse struct {
	ProposalID int64            `json:"proposal_id"`
	Proposal   ProposalResponse `json:"proposal"`
	Message    string           `json:"message"`
}

type CommandResponse struct {
	Op         string            `json:"op"`
	ProposalID *int64            `json:"proposal_id,omitempty"`
	Phase      *governance.Phase `json:"phase,omitempty"`
}

type VoterResponse struct {
	Address         string `json:"address"`
	IsWhitelisted   bool   `json:"is_whitelisted"`
	Weight          int64  `json:"weight"`
	HasVoted        bool   `json:"has_voted"`
	VotedProposalID *int64 `json:"voted_proposal_id"`
}

type ProposalResponse struct {
	ID                   int64   `json:"id"`
	Description          string  `json:"description"`
	TotalVotingPowerCast int64   `json:"total_voting_power_cast"`
	ForVotes             int64   `json:"for_votes"`
	AgainstVotes         int64   `json:"against_votes"`
	ForPercent           float64 `json:"for_percent"`
	AgainstPercent       float64 `json:"against_percent"`
}

type ProposalListResponse struct {
	Phase     governance.Phase   `json:"phase"`
	Count     int64              `json:"count"`
	Proposals []ProposalResponse `json:"proposals"`
}

// Conversions

func NewVoterResponse(v governance.Voter) VoterResponse {
	return VoterResponse{
		Address:         v.Address.Hex(),
		IsWhitelisted:   v.Whitelisted,
		Weight:          v.Weight,
		HasVoted:        v.HasVoted,
		VotedProposalID: v.VotedProposalID,
	}
}

func NewProposalResponse(p governance.Proposal) ProposalResponse {
	forPct, againstPct := p.Shares()
	return ProposalResponse{
		ID:                   p.ID,
		Description:          p.Description,
		TotalVotingPowerCast: p.TotalVotingPowerCast,
		ForVotes:             p.ForVotes,
		AgainstVotes:         p.AgainstVotes,
		ForPercent:           forPct,
		AgainstPercent:       againstPct,
	}
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
