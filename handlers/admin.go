// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/middleware"
	"github.com/danielhkuo/weighted-voting/models"
)

type AdminHandler struct {
	eng     *governance.Engine
	callers *auth.Verifier
}

func NewAdminHandler(eng *governance.Engine, callers *auth.Verifier) *AdminHandler {
	return &AdminHandler{eng: eng, callers: callers}
}

// WhitelistVoter handles POST /voters
func (h *AdminHandler) WhitelistVoter(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r, h.callers)
	if !ok {
		return
	}

	var req models.WhitelistVoterRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.Voter == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter is required")
		return
	}
	voter, err := auth.ParseAddress(req.Voter)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.eng.WhitelistVoter(r.Context(), from, voter, req.Weight); err != nil {
		writeError(w, r, models.OpWhitelistVoter, err)
		return
	}

	slog.Info("voter whitelisted", "voter", voter.Hex(), "weight", req.Weight)

	middleware.JSONResponse(w, http.StatusOK, models.NewVoterResponse(h.eng.VoterInfo(voter)))
}

// CreateProposal handles POST /proposals
func (h *AdminHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r, h.callers)
	if !ok {
		return
	}

	var req models.CreateProposalRequest
	if !parseBody(w, r, &req) {
		return
	}

	id, err := h.eng.CreateProposal(r.Context(), from, req.Description)
	if err != nil {
		writeError(w, r, models.OpCreateProposal, err)
		return
	}

	slog.Info("proposal created", "proposal_id", id)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateProposalResponse{
		ProposalID: id,
	})
}

// StartVoting handles POST /phase/start
func (h *AdminHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.OpStartVoting, h.eng.StartVoting)
}

// EndVoting handles POST /phase/end
func (h *AdminHandler) EndVoting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.OpEndVoting, h.eng.EndVoting)
}

func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request, op string, apply func(ctx context.Context, caller common.Address) error) {
	from, ok := caller(w, r, h.callers)
	if !ok {
		return
	}

	if err := apply(r.Context(), from); err != nil {
		writeError(w, r, op, err)
		return
	}

	phase := h.eng.Phase()
	slog.Info("phase changed", "phase", phase.String())

	middleware.JSONResponse(w, http.StatusOK, models.PhaseResponse{Phase: phase})
}
