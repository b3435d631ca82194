//go:build doorlock_integrationtest

package config

// Integration-test mode: SSID/PSK name a test access point (unread, as in
// config.go), and the real HMAC path is exercised, unlike unit-test mode, so the HTTP and auth
// layers are tested end to end against real signatures.
var (
	SSID = "doorlock-integrationtest"
	PSK  = "doorlock-integrationtest-psk"
)

var RemoteLockSecret = "integrationtest-secret"

const SkipAuth = false

const ResetTimestamp = true
