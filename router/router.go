// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/handlers"
	"github.com/danielhkuo/weighted-voting/metrics"
	"github.com/danielhkuo/weighted-voting/middleware"
)

// NewRouter registers every endpoint. callers resolves the caller of every
// mutating request. m and gatherer may be nil, which turns off request
// metrics and the /metrics endpoint respectively.
func NewRouter(eng *governance.Engine, callers *auth.Verifier, m *metrics.Metrics, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	var obs middleware.RequestObserver
	if m != nil {
		obs = m
	}
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithMetrics(obs, pattern, middleware.WithLogging(h)))
	}

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(eng, callers)
	votingHandler := handlers.NewVotingHandler(eng, callers)
	queryHandler := handlers.NewQueryHandler(eng)
	commandHandler := handlers.NewCommandHandler(eng, callers)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session and registry (admin operations)
	handle("POST /phase/start", adminHandler.StartVoting)
	handle("POST /phase/end", adminHandler.EndVoting)
	handle("POST /voters", adminHandler.WhitelistVoter)
	handle("POST /proposals", adminHandler.CreateProposal)

	// Voting (whitelisted voters)
	handle("POST /proposals/{id}/votes", votingHandler.CastVote)

	// Typed command envelope
	handle("POST /commands", commandHandler.Apply)

	// Reads (public)
	handle("GET /admin", queryHandler.GetAdmin)
	handle("GET /phase", queryHandler.GetPhase)
	handle("GET /voters/{address}", queryHandler.GetVoter)
	handle("GET /proposals", queryHandler.ListProposals)
	handle("GET /proposals/count", queryHandler.GetProposalsCount)
	handle("GET /proposals/{id}", queryHandler.GetProposal)

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("weighted-voting API v1"))
	})

	return mux
}
