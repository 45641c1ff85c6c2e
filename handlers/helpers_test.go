// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/cliparse"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/models"
	"github.com/danielhkuo/weighted-voting/testutil"
)

var (
	testAdmin = testutil.Address(0xad)
	voterA    = testutil.Address(0x0a)
	voterB    = testutil.Address(0x0b)
	voterC    = testutil.Address(0x0c)
)

// testServer routes requests the same way the production router does
type testServer struct {
	eng *governance.Engine
	mux *http.ServeMux
}

func newTestServer(t *testing.T, cfg cliparse.Config) *testServer {
	t.Helper()

	eng, store := testutil.SetupTestEngine(t, cfg.AdminAddress)
	callers := auth.NewVerifier(cfg.RequireSignatures, cfg.SignatureMaxAge, store)

	admin := NewAdminHandler(eng, callers)
	voting := NewVotingHandler(eng, callers)
	queries := NewQueryHandler(eng)
	commands := NewCommandHandler(eng, callers)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin", queries.GetAdmin)
	mux.HandleFunc("GET /phase", queries.GetPhase)
	mux.HandleFunc("POST /phase/start", admin.StartVoting)
	mux.HandleFunc("POST /phase/end", admin.EndVoting)
	mux.HandleFunc("POST /voters", admin.WhitelistVoter)
	mux.HandleFunc("GET /voters/{address}", queries.GetVoter)
	mux.HandleFunc("POST /proposals", admin.CreateProposal)
	mux.HandleFunc("GET /proposals", queries.ListProposals)
	mux.HandleFunc("GET /proposals/count", queries.GetProposalsCount)
	mux.HandleFunc("GET /proposals/{id}", queries.GetProposal)
	mux.HandleFunc("POST /proposals/{id}/votes", voting.CastVote)
	mux.HandleFunc("POST /commands", commands.Apply)

	return &testServer{eng: eng, mux: mux}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

// as sends a JSON request acting as caller
func (s *testServer) as(caller common.Address, method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.do(testutil.CallerRequest(method, path, body, caller))
}

func (s *testServer) whitelist(t *testing.T, voter common.Address, weight int64) {
	t.Helper()
	w := s.as(testAdmin, "POST", "/voters", models.WhitelistVoterRequest{Voter: voter.Hex(), Weight: weight})
	testutil.AssertStatus(t, w, http.StatusOK)
}

func (s *testServer) propose(t *testing.T, description string) int64 {
	t.Helper()
	w := s.as(testAdmin, "POST", "/proposals", models.CreateProposalRequest{Description: description})
	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.CreateProposalResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.ProposalID
}

func (s *testServer) start(t *testing.T) {
	t.Helper()
	testutil.AssertStatus(t, s.as(testAdmin, "POST", "/phase/start", nil), http.StatusOK)
}

func (s *testServer) end(t *testing.T) {
	t.Helper()
	testutil.AssertStatus(t, s.as(testAdmin, "POST", "/phase/end", nil), http.StatusOK)
}

func (s *testServer) proposal(t *testing.T, id string) models.ProposalResponse {
	t.Helper()
	w := s.do(testutil.MakeRequest("GET", "/proposals/"+id, nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ProposalResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func boolPtr(b bool) *bool { return &b }

func int64Ptr(i int64) *int64 { return &i }

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	if message != "" {
		require.Equal(t, message, errorBody(t, w).Message)
	}
}
