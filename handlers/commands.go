// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/middleware"
	"github.com/danielhkuo/weighted-voting/models"
)

type CommandHandler struct {
	eng     *governance.Engine
	callers *auth.Verifier
}

func NewCommandHandler(eng *governance.Engine, callers *auth.Verifier) *CommandHandler {
	return &CommandHandler{eng: eng, callers: callers}
}

// Apply handles POST /commands
func (h *CommandHandler) Apply(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r, h.callers)
	if !ok {
		return
	}

	var req models.CommandRequest
	if !parseBody(w, r, &req) {
		return
	}

	cmd, err := DecodeCommand(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.eng.Apply(r.Context(), from, cmd)
	if err != nil {
		writeError(w, r, req.Op, err)
		return
	}

	slog.Info("command applied", "op", req.Op, "caller", from.Hex())

	middleware.JSONResponse(w, http.StatusOK, models.CommandResponse{
		Op:         req.Op,
		ProposalID: res.ProposalID,
		Phase:      res.Phase,
	})
}

// DecodeCommand turns an envelope into exactly one typed command
func DecodeCommand(req models.CommandRequest) (governance.Command, error) {
	switch req.Op {
	case models.OpWhitelistVoter:
		if req.Voter == "" {
			return nil, errors.New("voter is required")
		}
		voter, err := auth.ParseAddress(req.Voter)
		if err != nil {
			return nil, err
		}
		return governance.WhitelistVoterCmd{Voter: voter, Weight: req.Weight}, nil
	case models.OpCreateProposal:
		return governance.CreateProposalCmd{Description: req.Description}, nil
	case models.OpStartVoting:
		return governance.StartVotingCmd{}, nil
	case models.OpEndVoting:
		return governance.EndVotingCmd{}, nil
	case models.OpVote:
		if req.ProposalID == nil {
			return nil, errors.New("proposal_id is required")
		}
		if req.Support == nil {
			return nil, errors.New("support is required")
		}
		return governance.VoteCmd{ProposalID: *req.ProposalID, Support: *req.Support}, nil
	case "":
		return nil, errors.New("op is required")
	default:
		return nil, fmt.Errorf("unknown op %q", req.Op)
	}
}
