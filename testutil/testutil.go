// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/cliparse"
	"github.com/danielhkuo/weighted-voting/db"
	"github.com/danielhkuo/weighted-voting/governance"
)

// Account is a throwaway key pair for signing test requests
type Account struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// NewAccount generates a fresh account
func NewAccount(t *testing.T) Account {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return Account{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// Address returns a deterministic address ending in b
func Address(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

// SetupTestDB opens a fresh SQLite database with the full schema under
// t.TempDir and closes it when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "governance.db"))
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.CreateSchema(conn), "Failed to create schema")
	return conn
}

// SetupTestEngine opens an engine for admin backed by a fresh database
func SetupTestEngine(t *testing.T, admin common.Address) (*governance.Engine, *db.Store) {
	t.Helper()

	store := db.NewStore(SetupTestDB(t))
	eng, err := governance.Open(context.Background(), admin, store)
	require.NoError(t, err, "Failed to open engine")
	return eng, store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(admin common.Address) cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseType:    db.TypeSQLite,
		AdminAddress:    admin,
		LogLevel:        "info",
		CORSOrigins:     []string{"*"},
		SignatureMaxAge: auth.DefaultMaxSkew,
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// CallerRequest creates a request acting as caller
func CallerRequest(method, path string, body interface{}, caller common.Address) *http.Request {
	return MakeRequest(method, path, body, map[string]string{
		auth.HeaderCaller: caller.Hex(),
	})
}

var lastTimestamp atomic.Int64

// NextTimestamp returns the current unix millisecond time, bumped when needed
// so that no two calls in a test binary return the same value.
func NextTimestamp() int64 {
	for {
		last := lastTimestamp.Load()
		ts := time.Now().UnixMilli()
		if ts <= last {
			ts = last + 1
		}
		if lastTimestamp.CompareAndSwap(last, ts) {
			return ts
		}
	}
}

// SignedRequest creates a request acting as acct and signed by its key now
func SignedRequest(t *testing.T, method, path string, body interface{}, acct Account) *http.Request {
	t.Helper()
	return SignedRequestAt(t, method, path, body, acct, NextTimestamp())
}

// SignedRequestAt is SignedRequest with an explicit timestamp
func SignedRequestAt(t *testing.T, method, path string, body interface{}, acct Account, ts int64) *http.Request {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	sig, err := auth.Sign(acct.Key, auth.SigningMessage(method, path, ts, raw))
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderCaller, acct.Address.Hex())
	req.Header.Set(auth.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(auth.HeaderSignature, sig)
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
