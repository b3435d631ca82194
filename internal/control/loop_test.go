package control

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"testing"
	"time"

	"github.com/usbarmory/doorlock/internal/auth"
	"github.com/usbarmory/doorlock/internal/httpfe"
	"github.com/usbarmory/doorlock/internal/lockfsm"
	"github.com/usbarmory/doorlock/internal/noncestore"
)

type fakeSensor struct{ deg int }

func (s *fakeSensor) Sample() int { return s.deg }

type fakeActuator struct {
	attached   bool
	lastTarget int
}

func (a *fakeActuator) AttachAndWrite(target int) { a.attached, a.lastTarget = true, target }
func (a *fakeActuator) Detach()                   { a.attached = false }

type fakeWatchdog struct{ serviced int }

func (w *fakeWatchdog) Service(timeoutMS int) { w.serviced++ }

type fakeCalibFlag struct{ next bool }

func (f *fakeCalibFlag) ConsumeAndClear() bool {
	v := f.next
	f.next = false
	return v
}

type fakeDisplay struct{ shown []lockfsm.State }

func (d *fakeDisplay) Show(s lockfsm.State) { d.shown = append(d.shown, s) }

// fakeListener is a net.Listener backed by a single pre-queued in-memory
// connection pair, so Loop.Tick can be exercised without a real socket.
type fakeListener struct {
	pending chan net.Conn
}

func newFakeListener() *fakeListener {
	return &fakeListener{pending: make(chan net.Conn, 1)}
}

func (l *fakeListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.pending:
		return c, nil
	default:
		return nil, errNoConn
	}
}

func (l *fakeListener) Close() error   { return nil }
func (l *fakeListener) Addr() net.Addr { return nil }

type noConnError struct{}

func (noConnError) Error() string   { return "no pending connection" }
func (noConnError) Timeout() bool   { return true }
func (noConnError) Temporary() bool { return true }

var errNoConn = noConnError{}

func newLoopFixture() (*Loop, *fakeListener, *fakeActuator, *fakeDisplay, *fakeCalibFlag) {
	f := lockfsm.New()
	f.LockDeg = 120
	f.UnlockDeg = 50
	f.Current = lockfsm.Locked

	sensor := &fakeSensor{deg: 120}
	act := &fakeActuator{}
	wd := &fakeWatchdog{}
	calib := &fakeCalibFlag{}
	disp := &fakeDisplay{}
	ln := newFakeListener()
	verifier := auth.New([]byte("secret"), noncestore.NewMemory(0))

	now := uint32(1000)

	l := &Loop{
		FSM:      f,
		Sensor:   sensor,
		Actuator: act,
		Auth:     verifier,
		Server:   httpfe.New(ln),
		Watchdog: wd,
		Calib:    calib,
		Display:  disp,
		Now:      func() uint32 { return now },
	}

	return l, ln, act, disp, calib
}

func TestTickWithNoClientStillServicesWatchdog(t *testing.T) {
	l, _, _, _, _ := newLoopFixture()
	wd := l.Watchdog.(*fakeWatchdog)

	l.Tick()

	if wd.serviced != 1 {
		t.Fatalf("watchdog serviced %d times, want 1", wd.serviced)
	}
}

func TestTickUpdatesDisplayOnlyOnStateChange(t *testing.T) {
	l, _, _, disp, _ := newLoopFixture()

	l.Tick()
	if len(disp.shown) != 0 {
		t.Fatalf("display updated with no state change: %v", disp.shown)
	}

	l.Calib.(*fakeCalibFlag).next = true
	l.Sensor.(*fakeSensor).deg = 50
	l.FSM.Current = lockfsm.CalibrateUnlock
	l.Tick()
	if len(disp.shown) != 1 || disp.shown[0] != lockfsm.Unlocked {
		t.Fatalf("display = %v, want one update to Unlocked", disp.shown)
	}
}

func TestTickAcceptsUnlockRequestAndRespondsAfterTransition(t *testing.T) {
	l, ln, act, _, _ := newLoopFixture()

	secret := []byte("secret")
	nonceStr := "1"
	sig := computeSig(secret, nonceStr)
	l.Auth = auth.New(secret, noncestore.NewMemory(0))

	clientConn, serverConn := net.Pipe()

	go func() {
		req := "POST /unlock HTTP/1.1\r\nX-Nonce: " + nonceStr + "\r\nX-Signature: " + sig + "\r\n\r\n"
		clientConn.Write([]byte(req))
	}()

	ln.pending <- serverConn

	respDone := make(chan string, 1)
	go func() {
		buf := make([]byte, 4096)
		clientConn.SetReadDeadline(time.Now().Add(time.Second))
		n, _ := clientConn.Read(buf)
		respDone <- string(buf[:n])
	}()

	l.Tick()

	if l.FSM.Current != lockfsm.BusyMove || l.FSM.CurrentCmd != lockfsm.Unlock {
		t.Fatalf("FSM state = %v cmd = %v, want BusyMove/Unlock", l.FSM.Current, l.FSM.CurrentCmd)
	}
	if !act.attached || act.lastTarget != 50 {
		t.Fatalf("actuator not attached to unlock_deg")
	}

	resp := <-respDone
	if resp[:15] != "HTTP/1.1 200 OK" {
		t.Fatalf("response = %q, want 200 OK (BusyMove accepts Unlock)", resp)
	}

	clientConn.Close()
}

func computeSig(secret []byte, nonce string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}
