// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/middleware"
	"github.com/danielhkuo/weighted-voting/models"
)

// QueryHandler serves the read-only endpoints. None of them need a caller.
type QueryHandler struct {
	eng *governance.Engine
}

func NewQueryHandler(eng *governance.Engine) *QueryHandler {
	return &QueryHandler{eng: eng}
}

// GetAdmin handles GET /admin
func (h *QueryHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.AdminResponse{
		Admin: h.eng.Admin().Hex(),
	})
}

// GetPhase handles GET /phase
func (h *QueryHandler) GetPhase(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.PhaseResponse{Phase: h.eng.Phase()})
}

// GetVoter handles GET /voters/{address}
func (h *QueryHandler) GetVoter(w http.ResponseWriter, r *http.Request) {
	addr, err := auth.ParseAddress(r.PathValue("address"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Unknown voters come back as the zero record
	middleware.JSONResponse(w, http.StatusOK, models.NewVoterResponse(h.eng.VoterInfo(addr)))
}

// ListProposals handles GET /proposals
func (h *QueryHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	proposals := h.eng.Proposals()

	resp := models.ProposalListResponse{
		Phase:     h.eng.Phase(),
		Count:     int64(len(proposals)),
		Proposals: make([]models.ProposalResponse, 0, len(proposals)),
	}
	for _, p := range proposals {
		resp.Proposals = append(resp.Proposals, models.NewProposalResponse(p))
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetProposalsCount handles GET /proposals/count
func (h *QueryHandler) GetProposalsCount(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ProposalsCountResponse{
		Count: h.eng.ProposalsCount(),
	})
}

// GetProposal handles GET /proposals/{id}
func (h *QueryHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	p, err := h.eng.Proposal(id)
	if err != nil {
		writeError(w, r, models.OpGetProposal, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NewProposalResponse(p))
}
