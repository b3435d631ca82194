// Package motor implements the sole writer of motor power and position
// commands — the only component allowed to touch the switched supply line
// and the pulse-width target it drives.
package motor

// driver is the minimal hardware collaborator an Actuator binds to: a
// switched supply line plus a pulse-width target, adapting
// soc/nxp/gpio.Pin's Out/High/Low idiom (board/usbarmory/mk2/led.go,
// pmic.go) down to the two operations the FSM needs.
type driver interface {
	powerOn()
	powerOff()
	writeTarget(targetDeg int)
}

// Actuator drives the motor. attach() energises the switched supply line
// and binds the pulse-width generator to the output pin; detach() reverses
// both. Both operations are idempotent: the Actuator tracks its own
// attached flag rather than relying on driver state.
type Actuator struct {
	drv      driver
	attached bool
}

// New returns an Actuator bound to drv, initially detached.
func New(drv driver) *Actuator {
	return &Actuator{drv: drv}
}

// AttachAndWrite energises the supply line (if not already energised) and
// commands the pulse-width generator to targetDeg. The Actuator makes no
// promise that the motor has reached targetDeg on return; progress is
// observed via PositionSensor, not here.
func (a *Actuator) AttachAndWrite(targetDeg int) {
	if !a.attached {
		a.drv.powerOn()
		a.attached = true
	}
	a.drv.writeTarget(targetDeg)
}

// Detach releases the switched supply line. A no-op if already detached.
func (a *Actuator) Detach() {
	if !a.attached {
		return
	}
	a.drv.powerOff()
	a.attached = false
}

// Attached reports whether the supply line is currently energised, which
// the position sensor consults to select its powered/unpowered calibration
// table.
func (a *Actuator) Attached() bool {
	return a.attached
}
