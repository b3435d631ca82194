package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/usbarmory/doorlock/internal/noncestore"
)

func sign(secret []byte, nonceStr string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(nonceStr))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsFreshSignedNonce(t *testing.T) {
	secret := []byte("topsecret")
	v := New(secret, noncestore.NewMemory(0))

	if !v.Verify("1", sign(secret, "1")) {
		t.Fatalf("expected acceptance of first nonce with valid signature")
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	secret := []byte("topsecret")
	v := New(secret, noncestore.NewMemory(0))

	if v.Verify("1", sign([]byte("wrongsecret"), "1")) {
		t.Fatalf("expected rejection of signature made with wrong secret")
	}
}

func TestVerifyRejectsMalformedNonce(t *testing.T) {
	secret := []byte("topsecret")
	v := New(secret, noncestore.NewMemory(0))

	for _, bad := range []string{"", "abc", "-1", "1.5", " "} {
		if v.Verify(bad, sign(secret, bad)) {
			t.Errorf("nonce %q: expected rejection", bad)
		}
	}
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	secret := []byte("topsecret")
	v := New(secret, noncestore.NewMemory(0))

	for _, bad := range []string{"", "zz", sign(secret, "1")[:10]} {
		if v.Verify("1", bad) {
			t.Errorf("signature %q: expected rejection", bad)
		}
	}
}

func TestVerifyAdvancesLastNonce(t *testing.T) {
	secret := []byte("topsecret")
	store := noncestore.NewMemory(0)
	v := New(secret, store)

	if !v.Verify("10", sign(secret, "10")) {
		t.Fatalf("expected acceptance")
	}

	last, err := store.Load()
	if err != nil || last != 10 {
		t.Fatalf("store.Load() = %d, %v; want 10, nil", last, err)
	}
}

// TestReplayRejectsExactFloor pins the boundary case: with last=1000 and a
// window of 5, the floor is 995, and a nonce exactly at the floor is still
// rejected (<=, not <).
func TestReplayRejectsExactFloor(t *testing.T) {
	secret := []byte("topsecret")
	store := noncestore.NewMemory(1000)
	v := New(secret, store)

	if v.Verify("995", sign(secret, "995")) {
		t.Fatalf("nonce at the replay floor must be rejected")
	}
}

func TestReplayAcceptsJustAboveFloor(t *testing.T) {
	secret := []byte("topsecret")
	store := noncestore.NewMemory(1000)
	v := New(secret, store)

	if !v.Verify("996", sign(secret, "996")) {
		t.Fatalf("nonce one above the replay floor must be accepted")
	}
}

func TestReplayAdmitsRepeatAboveFloor(t *testing.T) {
	secret := []byte("topsecret")
	store := noncestore.NewMemory(42)
	v := New(secret, store)

	// floor = max(5,42)-5 = 37, so repeating the last-accepted nonce 42
	// is above the floor and passes the replay check.
	if !v.Verify("42", sign(secret, "42")) {
		t.Fatalf("nonce 42 is above the replay floor 37 and must be accepted")
	}
}

func TestFreshDeviceAdmitsSmallNonceBelowWindow(t *testing.T) {
	// N_last=0 -> floor = max(5,0)-5 = 0, so nonce=1 is accepted even
	// though it is well inside what would otherwise look like a
	// replay window; this is the documented open-question resolution.
	secret := []byte("topsecret")
	v := New(secret, noncestore.NewMemory(0))

	if !v.Verify("1", sign(secret, "1")) {
		t.Fatalf("expected acceptance on a fresh device")
	}
}

func TestReplayFloorMath(t *testing.T) {
	cases := []struct {
		last, window, want uint32
	}{
		{0, 5, 0},
		{3, 5, 0},
		{5, 5, 0},
		{1000, 5, 995},
	}
	for _, c := range cases {
		if got := replayFloor(c.last, c.window); got != c.want {
			t.Errorf("replayFloor(%d, %d) = %d, want %d", c.last, c.window, got, c.want)
		}
	}
}
