package lockfsm

import "testing"

// fakeActuator records attach/detach calls so tests can assert on FSM side
// effects without any hardware.
type fakeActuator struct {
	attached   bool
	lastTarget int
	attachN    int
	detachN    int
}

func (a *fakeActuator) AttachAndWrite(target int) {
	a.attached = true
	a.lastTarget = target
	a.attachN++
}

func (a *fakeActuator) Detach() {
	a.attached = false
	a.detachN++
}

func calibrated() *FSM {
	f := New()
	f.LockDeg = 120
	f.UnlockDeg = 50
	f.Current = Unlocked
	return f
}

func TestCalibrationSequence(t *testing.T) {
	f := New()
	act := &fakeActuator{}

	if f.Current != CalibrateLock {
		t.Fatalf("boot state = %v, want CalibrateLock", f.Current)
	}

	// No button press: stays put.
	f.Step(Input{Deg: 120}, act)
	if f.Current != CalibrateLock {
		t.Fatalf("state = %v, want CalibrateLock (no button)", f.Current)
	}

	f.Step(Input{Deg: 120, CalibrateBtn: true}, act)
	if f.Current != CalibrateUnlock {
		t.Fatalf("state = %v, want CalibrateUnlock", f.Current)
	}
	if f.LockDeg != 120 {
		t.Fatalf("LockDeg = %d, want 120", f.LockDeg)
	}

	f.Step(Input{Deg: 50, CalibrateBtn: true}, act)
	if f.Current != Unlocked {
		t.Fatalf("state = %v, want Unlocked", f.Current)
	}
	if f.UnlockDeg != 50 {
		t.Fatalf("UnlockDeg = %d, want 50", f.UnlockDeg)
	}
}

func TestCalibrationRejectsViolatingLayout(t *testing.T) {
	f := New()
	act := &fakeActuator{}

	f.Step(Input{Deg: 60, CalibrateBtn: true}, act)
	if f.Current != CalibrateUnlock {
		t.Fatalf("state = %v, want CalibrateUnlock", f.Current)
	}

	// Candidate unlock_deg=58 violates unlock+eps < lock-eps (58+5=63 is
	// not < 60-5=55): no transition, stays in CalibrateUnlock.
	f.Step(Input{Deg: 58, CalibrateBtn: true}, act)
	if f.Current != CalibrateUnlock {
		t.Fatalf("state = %v, want CalibrateUnlock (invariant violated)", f.Current)
	}
	if f.UnlockDeg != 0 {
		t.Fatalf("UnlockDeg = %d, want uncommitted (0)", f.UnlockDeg)
	}

	// A corrected position clears the invariant and commits.
	f.Step(Input{Deg: 40, CalibrateBtn: true}, act)
	if f.Current != Unlocked {
		t.Fatalf("state = %v, want Unlocked", f.Current)
	}
}

// TestLockToUnlockHappyPath is the end-to-end happy path: an unlock
// request on a locked, calibrated bolt drives the motor open and settles
// back into Unlocked.
func TestLockToUnlockHappyPath(t *testing.T) {
	f := calibrated()
	f.Current = Locked
	act := &fakeActuator{}

	f.Step(Input{Deg: 120, NowMS: 1000, Cmd: Unlock}, act)
	if f.Current != BusyMove || f.CurrentCmd != Unlock || f.MoveStartMS != 1000 {
		t.Fatalf("got state=%v cmd=%v start=%d, want BusyMove/Unlock/1000", f.Current, f.CurrentCmd, f.MoveStartMS)
	}
	if !act.attached || act.lastTarget != f.UnlockDeg {
		t.Fatalf("actuator not attached to unlock_deg")
	}

	f.Step(Input{Deg: 90, NowMS: 1500}, act)
	if f.Current != BusyMove {
		t.Fatalf("state = %v, want still BusyMove", f.Current)
	}

	f.Step(Input{Deg: 50, NowMS: 2000}, act)
	if f.Current != Unlocked || f.CurrentCmd != NoCommand {
		t.Fatalf("got state=%v cmd=%v, want Unlocked/NoCommand", f.Current, f.CurrentCmd)
	}
	if act.attached {
		t.Fatalf("actuator should be detached on completion")
	}
}

// TestMoveTimeout is end-to-end scenario 2.
func TestMoveTimeout(t *testing.T) {
	f := calibrated()
	f.Current = BusyMove
	f.MoveStartMS = 1000
	f.CurrentCmd = Lock
	act := &fakeActuator{attached: true}

	f.Step(Input{Deg: 75, NowMS: 7000}, act)
	if f.Current != Bad {
		t.Fatalf("state = %v, want Bad", f.Current)
	}
	if act.attached {
		t.Fatalf("actuator should be detached after timeout")
	}

	// Bad is terminal: further ticks, including commands, never leave it.
	f.Step(Input{Deg: 120, NowMS: 7100, Cmd: Lock}, act)
	if f.Current != Bad {
		t.Fatalf("state = %v, want still Bad", f.Current)
	}
}

// TestManualInterference is end-to-end scenario 3.
func TestManualInterference(t *testing.T) {
	f := calibrated()
	f.Current = Unlocked
	act := &fakeActuator{}

	f.Step(Input{Deg: 80}, act)
	if f.Current != BusyWait {
		t.Fatalf("state = %v, want BusyWait", f.Current)
	}

	f.Step(Input{Deg: 120}, act)
	if f.Current != Locked {
		t.Fatalf("state = %v, want Locked", f.Current)
	}
}

// TestWrongSideCommand pins the stricter variant: a lock command while
// already Locked yields no transition, rather than being silently accepted
// as a no-op.
func TestWrongSideCommand(t *testing.T) {
	f := calibrated()
	f.Current = Locked
	act := &fakeActuator{}

	f.Step(Input{Deg: 120, Cmd: Lock}, act)
	if f.Current != Locked {
		t.Fatalf("state = %v, want still Locked (no transition)", f.Current)
	}
	if f.AcceptsCommand(Lock) != true {
		t.Fatalf("AcceptsCommand(Lock) in Locked should report acceptance for the HTTP 200 branch")
	}
}

func TestBusyMoveCompletionGatedByCommand(t *testing.T) {
	// A move to Lock whose first reading already satisfies at_unlock (due
	// to tolerance overlap on a pathological calibration) must not
	// complete early: completion is gated by current_cmd, not symmetric.
	f := calibrated()
	f.Current = BusyMove
	f.CurrentCmd = Lock
	f.MoveStartMS = 1000
	act := &fakeActuator{attached: true}

	// deg=50 satisfies at_unlock but current_cmd is Lock, so no early exit.
	f.Step(Input{Deg: 50, NowMS: 1100}, act)
	if f.Current != BusyMove {
		t.Fatalf("state = %v, want still BusyMove (gated by current_cmd)", f.Current)
	}

	f.Step(Input{Deg: 120, NowMS: 1200}, act)
	if f.Current != Locked || f.CurrentCmd != NoCommand {
		t.Fatalf("got state=%v cmd=%v, want Locked/NoCommand", f.Current, f.CurrentCmd)
	}
}

func TestStateStringRoundTrip(t *testing.T) {
	states := []State{CalibrateLock, CalibrateUnlock, Unlocked, Locked, BusyWait, BusyMove, Bad}
	for _, s := range states {
		got, err := ParseState(s.String())
		if err != nil {
			t.Fatalf("ParseState(%q): %v", s.String(), err)
		}
		if got != s {
			t.Fatalf("round trip %v -> %q -> %v", s, s.String(), got)
		}
	}
}

func TestWireNames(t *testing.T) {
	cases := map[State]string{
		CalibrateLock:   "CALIBRATE_LOCK",
		CalibrateUnlock: "CALIBRATE_UNLOCK",
		Unlocked:        "UNLOCK",
		Locked:          "LOCK",
		BusyWait:        "BUSY_WAIT",
		BusyMove:        "BUSY_MOVE",
		Bad:             "BAD",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

// TestEveryNonBusyMoveExitHasNoCommand checks a cross-cutting invariant:
// for all transitions, if the entry state is not BusyMove, the exit state
// satisfies current_command == NoCommand.
func TestEveryNonBusyMoveExitHasNoCommand(t *testing.T) {
	starts := []State{CalibrateLock, CalibrateUnlock, Unlocked, Locked, BusyWait, Bad}
	for _, s := range starts {
		f := calibrated()
		f.Current = s
		act := &fakeActuator{}
		for deg := 0; deg <= 180; deg += 15 {
			for _, cmd := range []Command{NoCommand, Lock, Unlock} {
				g := *f
				g.Step(Input{Deg: deg, NowMS: 1, CalibrateBtn: true, Cmd: cmd}, act)
				if g.Current != BusyMove && g.CurrentCmd != NoCommand {
					t.Fatalf("from %v deg=%d cmd=%v: exit state %v has CurrentCmd=%v, want NoCommand", s, deg, cmd, g.Current, g.CurrentCmd)
				}
			}
		}
	}
}

func TestBadNeverLeaves(t *testing.T) {
	f := calibrated()
	f.Current = Bad
	act := &fakeActuator{}
	for deg := 0; deg <= 180; deg += 10 {
		for _, cmd := range []Command{NoCommand, Lock, Unlock} {
			f.Step(Input{Deg: deg, CalibrateBtn: true, Cmd: cmd}, act)
			if f.Current != Bad {
				t.Fatalf("Bad transitioned to %v", f.Current)
			}
		}
	}
}

func TestBusyMoveDetachesByNextTick(t *testing.T) {
	// Invariant: for all transitions from BusyMove, the motor is detached
	// by the time the next tick begins.
	cases := []struct {
		cmd Command
		deg int
	}{
		{Lock, 120},
		{Unlock, 50},
	}
	for _, c := range cases {
		f := calibrated()
		f.Current = BusyMove
		f.CurrentCmd = c.cmd
		f.MoveStartMS = 0
		act := &fakeActuator{attached: true}
		f.Step(Input{Deg: c.deg, NowMS: 100}, act)
		if act.attached {
			t.Fatalf("cmd=%v: actuator still attached after completion", c.cmd)
		}
	}

	// Timeout path.
	f := calibrated()
	f.Current = BusyMove
	f.CurrentCmd = Lock
	f.MoveStartMS = 0
	act := &fakeActuator{attached: true}
	f.Step(Input{Deg: 75, NowMS: 6000}, act)
	if act.attached {
		t.Fatalf("actuator still attached after timeout")
	}
}
