// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth identifies the caller of an API request.

# Caller Address

Every mutating request names the address it acts as:

	X-Caller-Address: 0x70997970C51812dc3A010C7d01b50e0d17dc79C8

	callers := auth.NewVerifier(cfg.RequireSignatures, cfg.SignatureMaxAge, store)
	caller, err := callers.Caller(w, r)

Addresses compare by their 20 bytes, so letter case does not matter.

# Signatures

When signatures are required, the request also carries

	X-Caller-Timestamp: 1700000000000
	X-Caller-Signature: 0x<65 byte hex>

The signature must be an EIP-191 personal_sign signature, by the caller
address, of SigningMessage(method, path, timestamp, body):

	POST /proposals/0/votes
	1700000000000
	{"support":true}

# Replay

The timestamp is in unix milliseconds and must be within the configured
window of the server clock. It must also be newer than the last timestamp
accepted for the same caller, which the ReplayGuard (the database store in
production) remembers. A captured request therefore cannot be sent twice,
and clients signing in quick succession must keep their timestamps
strictly increasing.

Bodies over MaxBodyBytes are refused.

Sign builds such a signature from a private key, for clients and tests.
No other identity checks are made.
*/
package auth
