// Package auth implements request authentication and replay prevention:
// HMAC-SHA256 signature verification over a monotonic client-supplied
// nonce, with a sliding replay window checked against a persisted
// last-accepted nonce.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/usbarmory/doorlock/internal/noncestore"
)

// ReplayWindow places the replay floor below the last-accepted nonce: a
// nonce at or below max(ReplayWindow, last) - ReplayWindow is refused, and
// any nonce above that floor passes the replay check, including one equal
// to the last-accepted nonce.
const ReplayWindow = 5

// Verifier holds the shared HMAC secret and the persistent nonce store.
// One instance exists per device, initialized at boot from the
// compile-time REMOTE_LOCK_PASS configuration value.
type Verifier struct {
	secret []byte
	store  noncestore.Store
}

// New returns a Verifier keyed by secret and backed by store.
func New(secret []byte, store noncestore.Store) *Verifier {
	return &Verifier{secret: secret, store: store}
}

// AlwaysAccept is a Verifier that accepts every request without checking a
// nonce or signature, for config.SkipAuth builds where there is no HMAC
// material to test against.
type AlwaysAccept struct{}

func (AlwaysAccept) Verify(nonceStr, signatureHex string) bool { return true }

// Verify runs the ordered checks a request's nonce and signature must pass.
// None of its failure modes are distinguishable to the caller: every
// rejection simply returns false, so that the HTTP front end's 403 response
// carries no detail about which check failed.
func (v *Verifier) Verify(nonceStr, signatureHex string) bool {
	nonceStr = strings.TrimSpace(nonceStr)
	signatureHex = strings.TrimSpace(signatureHex)

	// Rule 1: parse as an unsigned decimal integer. strconv.ParseUint
	// already accepts the literal "0" without special-casing it.
	nonce, err := strconv.ParseUint(nonceStr, 10, 32)
	if err != nil {
		return false
	}

	// Rule 2: load last-accepted nonce from persistent storage.
	last, err := v.store.Load()
	if err != nil {
		return false
	}

	// Rule 3: reject anything at or below the sliding floor — the boundary
	// nonce itself (nonce == floor) is rejected, not just nonces strictly
	// below it (see DESIGN.md). A nonce above the floor passes, even when it
	// repeats the last-accepted nonce.
	floor := replayFloor(uint32(last), ReplayWindow)
	if uint32(nonce) <= floor {
		return false
	}

	// Rule 4: compute HMAC-SHA256 over the ASCII nonce string.
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(nonceStr))
	expected := mac.Sum(nil)

	// Rule 5: decode the hex signature to 32 bytes.
	received, err := hex.DecodeString(signatureHex)
	if err != nil || len(received) != sha256.Size {
		return false
	}

	// Rule 6: constant-time compare, OR-accumulating the XOR of each byte
	// with no short-circuiting.
	if !constantTimeEqual(expected, received) {
		return false
	}

	// Rule 7: persist the new last-accepted nonce.
	if err := v.store.Save(uint32(nonce)); err != nil {
		return false
	}

	return true
}

// replayFloor computes max(window, last) - window without underflow: the
// max() term is always >= window, so the subtraction never wraps.
func replayFloor(last, window uint32) uint32 {
	m := window
	if last > m {
		m = last
	}
	return m - window
}

// constantTimeEqual reports whether a and b are equal, in time independent
// of the position of the first mismatching byte. It never returns early on
// a mismatch, so that a signature check can't be timed byte-by-byte to
// recover the expected HMAC.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}

	return diff == 0
}
