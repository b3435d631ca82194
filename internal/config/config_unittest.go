//go:build doorlock_unittest

package config

// Unit-test mode: no Wi-Fi association is attempted, auth is bypassed so
// FSM/HTTP tests don't need real HMAC material, and the nonce slot is reset
// on every boot so each test run starts clean.
var (
	SSID = "doorlock-unittest"
	PSK  = ""
)

var RemoteLockSecret = "unittest-secret"

const SkipAuth = true

const ResetTimestamp = true
