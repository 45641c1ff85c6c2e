// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
	"github.com/danielhkuo/weighted-voting/middleware"
)

// StatusFor maps an engine error to its HTTP status
func StatusFor(err error) int {
	switch governance.Kind(err) {
	case governance.ErrUnauthorized:
		return http.StatusForbidden
	case governance.ErrInvalidArgument:
		return http.StatusBadRequest
	case governance.ErrNotFound:
		return http.StatusNotFound
	case governance.ErrAlreadyVoted, governance.ErrNotActive, governance.ErrInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports a failed engine operation
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("operation failed",
			"op", op,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		middleware.ErrorResponse(w, status, "Internal error")
		return
	}
	slog.Debug("operation rejected", "op", op, "error", err)
	middleware.ErrorResponse(w, status, governance.Message(err))
}

// caller resolves the acting address or writes a 401 (413 for an oversized body)
func caller(w http.ResponseWriter, r *http.Request, callers *auth.Verifier) (common.Address, bool) {
	addr, err := callers.Caller(w, r)
	if err == nil {
		return addr, true
	}
	switch {
	case errors.Is(err, auth.ErrBodyTooLarge):
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, auth.ErrMissingCaller),
		errors.Is(err, auth.ErrInvalidAddress),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrStaleRequest),
		errors.Is(err, auth.ErrReplayed):
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("failed to read caller", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read request")
	}
	return common.Address{}, false
}

// parseBody decodes the JSON body into v or writes a 400 (413 past the size cap)
func parseBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := middleware.ParseJSONBody(r, v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, auth.ErrBodyTooLarge.Error())
		return false
	}
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
	return false
}

// proposalID parses the {id} path segment or writes a 400
func proposalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal id is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal id must be an integer")
		return 0, false
	}
	return id, true
}
