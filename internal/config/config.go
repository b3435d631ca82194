//go:build !doorlock_unittest && !doorlock_integrationtest

// Package config holds the device's compile-time configuration, following
// example/example.go's compile-time IP/banner pattern. This file is the
// production build's configuration; doorlock_unittest and
// doorlock_integrationtest build tags select the two test-mode variants
// below instead.
package config

// SSID and PSK name a Wi-Fi network and its key (PSK is empty for an open
// network). Nothing in this repository reads them: the device's network
// interface is the board's ENET2 Ethernet MAC (cmd/doorlockd), and no Wi-Fi
// association takes place.
var (
	SSID = "doorlock"
	PSK  = ""
)

// RemoteLockSecret is the shared HMAC key used by internal/auth to verify
// X-Signature headers.
var RemoteLockSecret = "change-me-before-deployment"

// SkipAuth disables internal/auth.Verifier entirely, accepting every
// request regardless of X-Nonce/X-Signature. Test-only: it must never be
// true in a production build, and is only ever set by the
// doorlock_unittest build tag's variant of this file.
const SkipAuth = false

// ResetTimestamp, when true, wipes the persistent nonce slot
// (internal/noncestore) to 0 on boot.
const ResetTimestamp = false
