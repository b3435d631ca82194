package httpfe

import (
	"bufio"
	"strings"
	"testing"
)

func parse(t *testing.T, raw string) Request {
	t.Helper()
	r := bufio.NewReader(strings.NewReader(raw))
	req, err := ParseRequest(r)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	return req
}

func TestParseOptionsPreflight(t *testing.T) {
	req := parse(t, "OPTIONS /unlock HTTP/1.1\r\nHost: x\r\n\r\n")
	if req.Kind != KindOptions {
		t.Fatalf("Kind = %v, want KindOptions", req.Kind)
	}
}

func TestParseStatusCapturesAuthHeaders(t *testing.T) {
	req := parse(t, "GET /status HTTP/1.1\r\nX-Nonce: 42\r\nX-Signature: abc123\r\n\r\n")
	if req.Kind != KindStatus {
		t.Fatalf("Kind = %v, want KindStatus", req.Kind)
	}
	if req.Nonce != "42" || req.Signature != "abc123" {
		t.Fatalf("got nonce=%q sig=%q", req.Nonce, req.Signature)
	}
}

func TestParseHeadersExactCaseAndTrimmed(t *testing.T) {
	req := parse(t, "POST /lock HTTP/1.1\r\nX-Nonce:   7   \r\nX-Signature:  deadbeef  \r\n\r\n")
	if req.Nonce != "7" || req.Signature != "deadbeef" {
		t.Fatalf("got nonce=%q sig=%q, want trimmed values", req.Nonce, req.Signature)
	}
}

func TestParseHeadersWrongCaseIsIgnored(t *testing.T) {
	req := parse(t, "POST /lock HTTP/1.1\r\nx-nonce: 7\r\nX-SIGNATURE: deadbeef\r\n\r\n")
	if req.Nonce != "" || req.Signature != "" {
		t.Fatalf("got nonce=%q sig=%q, want both empty for wrong-case header names", req.Nonce, req.Signature)
	}
}

func TestParseUnrecognizedRoute(t *testing.T) {
	req := parse(t, "GET /nope HTTP/1.1\r\n\r\n")
	if req.Kind != KindUnrecognized {
		t.Fatalf("Kind = %v, want KindUnrecognized", req.Kind)
	}
}

func TestParseMalformedRequestLine(t *testing.T) {
	req := parse(t, "garbage\r\n\r\n")
	if req.Kind != KindUnrecognized {
		t.Fatalf("Kind = %v, want KindUnrecognized", req.Kind)
	}
}

func TestParsePostLockAndUnlock(t *testing.T) {
	if req := parse(t, "POST /lock HTTP/1.1\r\n\r\n"); req.Kind != KindLock {
		t.Fatalf("Kind = %v, want KindLock", req.Kind)
	}
	if req := parse(t, "POST /unlock HTTP/1.1\r\n\r\n"); req.Kind != KindUnlock {
		t.Fatalf("Kind = %v, want KindUnlock", req.Kind)
	}
}

type fakeVerifier struct{ accept bool }

func (f fakeVerifier) Verify(nonce, signature string) bool { return f.accept }

func TestClassifyOptionsUnconditional(t *testing.T) {
	req := Request{Kind: KindOptions}
	if got := Classify(req, fakeVerifier{accept: false}); got != KindOptions {
		t.Fatalf("Classify = %v, want KindOptions regardless of auth", got)
	}
}

func TestClassifyDowngradesFailedAuthToUnrecognized(t *testing.T) {
	req := Request{Kind: KindLock, Nonce: "1", Signature: "bad"}
	if got := Classify(req, fakeVerifier{accept: false}); got != KindUnrecognized {
		t.Fatalf("Classify = %v, want KindUnrecognized on failed auth", got)
	}
}

func TestClassifyPassesAuthThrough(t *testing.T) {
	req := Request{Kind: KindStatus, Nonce: "1", Signature: "good"}
	if got := Classify(req, fakeVerifier{accept: true}); got != KindStatus {
		t.Fatalf("Classify = %v, want KindStatus on successful auth", got)
	}
}

func writeResp(t *testing.T, kind Kind, accepted bool, state string) string {
	t.Helper()
	var sb strings.Builder
	w := bufio.NewWriter(&sb)
	if err := WriteResponse(w, kind, accepted, state); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	return sb.String()
}

func TestWriteResponseOptionsPreflight(t *testing.T) {
	out := writeResp(t, KindOptions, false, "")
	if !strings.HasPrefix(out, "HTTP/1.1 204 No Content\r\n") {
		t.Fatalf("unexpected status line: %q", out)
	}
	for _, want := range []string{
		"Access-Control-Allow-Origin: *\r\n",
		"Access-Control-Allow-Headers: Content-Type, X-Nonce, X-Signature\r\n",
		"Access-Control-Allow-Methods: GET, POST, OPTIONS\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing header %q in %q", want, out)
		}
	}
}

func TestWriteResponseStatus(t *testing.T) {
	out := writeResp(t, KindStatus, false, "LOCK")
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line: %q", out)
	}
	if !strings.HasSuffix(out, "LOCK") {
		t.Fatalf("body not LOCK: %q", out)
	}
}

func TestWriteResponseLockAcceptedVsRejected(t *testing.T) {
	ok := writeResp(t, KindLock, true, "LOCK")
	if !strings.HasPrefix(ok, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("accepted lock: unexpected status line: %q", ok)
	}

	rejected := writeResp(t, KindLock, false, "BUSY_WAIT")
	if !strings.HasPrefix(rejected, "HTTP/1.1 503 Service Unavailable\r\n") {
		t.Fatalf("rejected lock: unexpected status line: %q", rejected)
	}
	if !strings.HasSuffix(rejected, "BUSY_WAIT") {
		t.Fatalf("rejected lock body = %q, want BUSY_WAIT", rejected)
	}
}

func TestWriteResponseUnrecognizedIsEmptyBody403(t *testing.T) {
	out := writeResp(t, KindUnrecognized, false, "")
	if !strings.HasPrefix(out, "HTTP/1.1 403 Forbidden\r\n") {
		t.Fatalf("unexpected status line: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Fatalf("expected empty body, got %q", out)
	}
}

func TestWriteResponseAlwaysHasCORSOrigin(t *testing.T) {
	for _, k := range []Kind{KindOptions, KindStatus, KindLock, KindUnlock, KindUnrecognized} {
		out := writeResp(t, k, true, "LOCK")
		if !strings.Contains(out, "Access-Control-Allow-Origin: *\r\n") {
			t.Errorf("kind %v missing CORS origin header: %q", k, out)
		}
	}
}
