// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/middleware"
	"github.com/danielhkuo/weighted-voting/models"
)

type VotingHandler struct {
	eng     *governance.Engine
	callers *auth.Verifier
}

func NewVotingHandler(eng *governance.Engine, callers *auth.Verifier) *VotingHandler {
	return &VotingHandler{eng: eng, callers: callers}
}

// CastVote handles POST /proposals/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	from, ok := caller(w, r, h.callers)
	if !ok {
		return
	}

	var req models.VoteRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.Support == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "support is required")
		return
	}

	p, err := h.eng.Vote(r.Context(), from, id, *req.Support)
	if err != nil {
		writeError(w, r, models.OpVote, err)
		return
	}

	slog.Info("vote cast", "proposal_id", id, "voter", from.Hex(), "support", *req.Support)

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		ProposalID: id,
		Proposal:   models.NewProposalResponse(p),
		Message:    "Vote recorded",
	})
}
