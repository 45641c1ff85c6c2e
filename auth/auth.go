// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	HeaderCaller    = "X-Caller-Address"
	HeaderSignature = "X-Caller-Signature"
	HeaderTimestamp = "X-Caller-Timestamp"
)

var (
	ErrMissingCaller    = errors.New("caller address required")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrStaleRequest     = errors.New("request timestamp outside the accepted window")
	ErrReplayed         = errors.New("request timestamp already used")
	ErrBodyTooLarge     = errors.New("request body too large")
)

// MaxBodyBytes bounds every request body passing through a Verifier.
const MaxBodyBytes = 1 << 20

// DefaultMaxSkew is how far a signed timestamp may be from the server clock.
const DefaultMaxSkew = 5 * time.Minute

// ParseAddress parses a 0x-prefixed 20 byte hex address in any letter case.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// SigningMessage is what a caller signs to prove it owns its address:
// "METHOD PATH\nTIMESTAMP\n" followed by the raw request body. The timestamp
// is in unix milliseconds.
func SigningMessage(method, path string, timestamp int64, body []byte) []byte {
	ts := strconv.FormatInt(timestamp, 10)
	msg := make([]byte, 0, len(method)+len(path)+len(ts)+3+len(body))
	msg = append(msg, method...)
	msg = append(msg, ' ')
	msg = append(msg, path...)
	msg = append(msg, '\n')
	msg = append(msg, ts...)
	msg = append(msg, '\n')
	return append(msg, body...)
}

// Sign produces the hex signature a wallet's personal_sign would return for msg.
func Sign(key *ecdsa.PrivateKey, msg []byte) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// VerifySignature checks that sigHex is an EIP-191 personal signature of msg
// made by addr.
func VerifySignature(addr common.Address, msg []byte, sigHex string) error {
	sig, err := hexutil.Decode(sigHex)
	if err != nil || len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: malformed", ErrInvalidSignature)
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(msg), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if crypto.PubkeyToAddress(*pub) != addr {
		return fmt.Errorf("%w: signer does not match caller", ErrInvalidSignature)
	}
	return nil
}

// ReplayGuard remembers the newest signed timestamp accepted per caller.
type ReplayGuard interface {
	// AdvanceTimestamp records ts for caller. It fails with ErrReplayed
	// unless ts is newer than every timestamp accepted for caller before.
	AdvanceTimestamp(ctx context.Context, caller common.Address, ts int64) error
}

// MemoryGuard is a ReplayGuard that forgets everything on restart.
type MemoryGuard struct {
	mu   sync.Mutex
	last map[common.Address]int64
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{last: make(map[common.Address]int64)}
}

func (g *MemoryGuard) AdvanceTimestamp(_ context.Context, caller common.Address, ts int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[caller]; ok && ts <= last {
		return ErrReplayed
	}
	g.last[caller] = ts
	return nil
}

// Verifier resolves the caller of a request. With signatures required, a
// request is accepted only if it is signed by the caller, its timestamp is
// within maxSkew of now and newer than the caller's previous one.
type Verifier struct {
	requireSignature bool
	maxSkew          time.Duration
	guard            ReplayGuard
	now              func() time.Time
}

// NewVerifier returns a Verifier. A non-positive maxSkew means
// DefaultMaxSkew and a nil guard means a MemoryGuard.
func NewVerifier(requireSignature bool, maxSkew time.Duration, guard ReplayGuard) *Verifier {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &Verifier{
		requireSignature: requireSignature,
		maxSkew:          maxSkew,
		guard:            guard,
		now:              time.Now,
	}
}

// RequiresSignature reports whether unsigned requests are refused.
func (v *Verifier) RequiresSignature() bool {
	return v.requireSignature
}

// Caller returns the address the request acts as. The body is capped at
// MaxBodyBytes and stays readable for the handler; reading past the cap
// fails with an *http.MaxBytesError.
func (v *Verifier) Caller(w http.ResponseWriter, r *http.Request) (common.Address, error) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	}

	raw := r.Header.Get(HeaderCaller)
	if raw == "" {
		return common.Address{}, ErrMissingCaller
	}
	caller, err := ParseAddress(raw)
	if err != nil {
		return common.Address{}, err
	}
	if !v.requireSignature {
		return caller, nil
	}

	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return common.Address{}, ErrBodyTooLarge
			}
			return common.Address{}, fmt.Errorf("failed to read body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	sig := r.Header.Get(HeaderSignature)
	if sig == "" {
		return common.Address{}, fmt.Errorf("%w: %s header required", ErrInvalidSignature, HeaderSignature)
	}
	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s header must be unix milliseconds", ErrInvalidSignature, HeaderTimestamp)
	}
	skew := v.now().Sub(time.UnixMilli(ts))
	if skew > v.maxSkew || skew < -v.maxSkew {
		return common.Address{}, ErrStaleRequest
	}
	if err := VerifySignature(caller, SigningMessage(r.Method, r.URL.Path, ts, body), sig); err != nil {
		return common.Address{}, err
	}

	// Only verified timestamps may move the caller's high-water mark
	if err := v.guard.AdvanceTimestamp(r.Context(), caller, ts); err != nil {
		return common.Address{}, err
	}
	return caller, nil
}
