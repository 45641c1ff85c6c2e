// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package governance

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the single global session state gating every vote.
type Phase uint8

const (
	PhaseInactive Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "inactive":
		return PhaseInactive, nil
	case "active":
		return PhaseActive, nil
	case "ended":
		return PhaseEnded, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Voter is a registry entry. The zero value is what unknown addresses read as.
type Voter struct {
	Address         common.Address
	Whitelisted     bool
	Weight          int64
	HasVoted        bool
	VotedProposalID *int64
}

// Proposal is one ledger entry. Description never changes after creation.
type Proposal struct {
	ID                   int64
	Description          string
	TotalVotingPowerCast int64
	ForVotes             int64
	AgainstVotes         int64
}

// Shares returns the for and against percentages of the votes cast, or zero
// for both when nothing has been cast yet.
func (p Proposal) Shares() (forPct, againstPct float64) {
	total := p.ForVotes + p.AgainstVotes
	if total == 0 {
		return 0, 0
	}
	return float64(p.ForVotes) / float64(total) * 100, float64(p.AgainstVotes) / float64(total) * 100
}

// Snapshot is the full persisted state, as handed over by a Store at startup.
type Snapshot struct {
	Admin     common.Address
	Voters    map[common.Address]Voter
	Proposals []Proposal
	Phase     Phase
}

func copyVoter(v Voter) Voter {
	if v.VotedProposalID != nil {
		id := *v.VotedProposalID
		v.VotedProposalID = &id
	}
	return v
}
