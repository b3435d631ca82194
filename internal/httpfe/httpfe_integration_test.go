package httpfe

import (
	"bufio"
	"bytes"
	"testing"
)

// These tests pin the literal on-wire contract byte-for-byte: header names,
// status lines, and CORS headers have zero room for interpretation, so a
// passing unit test that happens to produce equivalent-but-reordered
// headers would still be a regression against a real browser client.

func render(kind Kind, accepted bool, state string) string {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := WriteResponse(w, kind, accepted, state); err != nil {
		panic(err)
	}
	return buf.String()
}

func TestWireOptionsPreflightExact(t *testing.T) {
	got := render(KindOptions, false, "")
	want := "HTTP/1.1 204 No Content\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Content-Type: text/plain\r\n" +
		"Access-Control-Allow-Headers: Content-Type, X-Nonce, X-Signature\r\n" +
		"Access-Control-Allow-Methods: GET, POST, OPTIONS\r\n" +
		"\r\n"

	if got != want {
		t.Fatalf("wire mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestWireStatusExact(t *testing.T) {
	got := render(KindStatus, false, "locked")
	want := "HTTP/1.1 200 OK\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 6\r\n" +
		"\r\n" +
		"locked"

	if got != want {
		t.Fatalf("wire mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestWireLockAcceptedExact(t *testing.T) {
	got := render(KindLock, true, "busy_move")
	want := "HTTP/1.1 200 OK\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 9\r\n" +
		"\r\n" +
		"busy_move"

	if got != want {
		t.Fatalf("wire mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestWireUnlockRejectedExact(t *testing.T) {
	got := render(KindUnlock, false, "locked")
	want := "HTTP/1.1 503 Service Unavailable\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 6\r\n" +
		"\r\n" +
		"locked"

	if got != want {
		t.Fatalf("wire mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestWireUnrecognizedExact(t *testing.T) {
	got := render(KindUnrecognized, false, "")
	want := "HTTP/1.1 403 Forbidden\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n"

	if got != want {
		t.Fatalf("wire mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

// TestWireRoundTripParsesBackToSameKind confirms a request built from the
// literal header names this package documents parses back to the Kind the
// route implies, closing the loop between the write side above and the
// parse side in httpfe_test.go.
func TestWireRoundTripParsesBackToSameKind(t *testing.T) {
	raw := "POST /lock HTTP/1.1\r\n" +
		"Host: doorlock.local\r\n" +
		"X-Nonce: 42\r\n" +
		"X-Signature: deadbeef\r\n" +
		"\r\n"

	req, err := ParseRequest(bufio.NewReader(bytes.NewBufferString(raw)))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Kind != KindLock || req.Nonce != "42" || req.Signature != "deadbeef" {
		t.Fatalf("got %+v, want Kind=Lock Nonce=42 Signature=deadbeef", req)
	}
}
