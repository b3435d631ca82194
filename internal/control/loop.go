// Package control implements the single-threaded cooperative tick that ties
// the position sensor, motor actuator, auth verifier, HTTP front end and
// lock FSM together into one device loop.
package control

import (
	"time"

	"github.com/usbarmory/doorlock/internal/httpfe"
	"github.com/usbarmory/doorlock/internal/lockfsm"
)

// Sensor is the subset of PositionSensor the loop needs.
type Sensor interface {
	Sample() int
}

// Watchdog is the subset of soc/nxp/wdog.WDOG the loop needs to pet each
// tick, so a hung loop resets the processor instead of leaving the bolt in
// an indeterminate position.
type Watchdog interface {
	Service(timeoutMS int)
}

// CalibFlag abstracts over the interrupt-disabled critical section guarding
// the one interrupt-crossing variable in the system: exactly one interrupt
// source (a calibration-button edge) sets a plain bool, and the loop
// atomically reads-and-clears it each tick inside a disable/enable-
// interrupts window, never via sync/atomic, which would mask the
// two-instruction critical section the hardware actually needs.
type CalibFlag interface {
	ConsumeAndClear() bool
}

// Displayer is the subset of the display mirror the loop needs.
type Displayer interface {
	Show(state lockfsm.State)
}

// WatchdogTimeoutMS is the timeout value passed to Watchdog.Service each
// tick; the watchdog itself resets the processor if the loop hangs for
// roughly 2.7s without servicing.
const WatchdogTimeoutMS = 2700

// PollTimeout bounds how long AcceptOne blocks waiting for a client
// connection before the loop continues to the next tick, keeping each tick
// within its sub-second budget.
const PollTimeout = 80 * time.Millisecond

// Loop holds every per-device singleton: one instance exists per device,
// created once at boot, passed by mutable reference into each tick rather
// than referenced via globals.
type Loop struct {
	FSM      *lockfsm.FSM
	Sensor   Sensor
	Actuator lockfsm.Actuator
	Auth     httpfe.Verifier
	Server   *httpfe.Server
	Watchdog Watchdog
	Calib    CalibFlag
	Display  Displayer

	// Now returns the current wall-clock time in milliseconds; this
	// bare-metal target has no monotonic clock package wired in, so
	// production wires it to an uptime counter and tests substitute a
	// deterministic fake.
	Now func() uint32
}

// Tick runs exactly one iteration of the device's control loop: accept at
// most one client, sample position and the calibration button, step the
// FSM, respond to the client, service the watchdog, and redraw the display
// on a state change.
func (l *Loop) Tick() {
	req, conn, hasConn := l.Server.AcceptOne(PollTimeout)

	kind := httpfe.KindUnrecognized
	if hasConn {
		kind = httpfe.Classify(req, l.Auth)
	}
	cmd := commandFor(kind)

	deg := l.Sensor.Sample()
	calibBtn := l.Calib.ConsumeAndClear()

	prevState := l.FSM.Current
	l.FSM.Step(lockfsm.Input{
		Deg:          deg,
		NowMS:        l.Now(),
		CalibrateBtn: calibBtn,
		Cmd:          cmd,
	}, l.Actuator)

	if hasConn {
		accepted := cmd != lockfsm.NoCommand && l.FSM.AcceptsCommand(cmd)
		httpfe.Respond(conn, kind, accepted, l.FSM.Current.String())
	}

	l.Watchdog.Service(WatchdogTimeoutMS)

	if l.FSM.Current != prevState {
		l.Display.Show(l.FSM.Current)
	}
}

// commandFor maps a classified HTTP request Kind to the FSM Command it
// represents. Status/Options/Unrecognized carry no intent of their own.
func commandFor(kind httpfe.Kind) lockfsm.Command {
	switch kind {
	case httpfe.KindLock:
		return lockfsm.Lock
	case httpfe.KindUnlock:
		return lockfsm.Unlock
	case httpfe.KindOptions, httpfe.KindStatus, httpfe.KindUnrecognized:
		return lockfsm.NoCommand
	default:
		panic("control: unhandled httpfe.Kind")
	}
}
