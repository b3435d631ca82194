//go:build tamago && arm

// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package motor

import "github.com/usbarmory/doorlock/soc/nxp/gpio"

// pwmStepDeg is not referenced by the driver. GPIODriver generates no pulse
// train: writeTarget only sets Direction toward the new target (High when it
// is at or above the previous target, Low otherwise), and the motor's power
// is switched by Supply.
const pwmStepDeg = 1

// GPIODriver binds an Actuator to a switched supply-enable pin and a
// direction pin, grounded on soc/nxp/gpio.Pin's Out/High/Low idiom used
// identically in board/usbarmory/mk2/pmic.go and led.go.
type GPIODriver struct {
	Supply    *gpio.Pin
	Direction *gpio.Pin

	// last is the most recently written target, used by writeTarget to
	// decide which way Direction should point.
	last int
}

// NewGPIODriver returns a driver bound to the given supply-enable and
// direction pins.
func NewGPIODriver(supply, direction *gpio.Pin) *GPIODriver {
	supply.Out()
	direction.Out()
	return &GPIODriver{Supply: supply, Direction: direction}
}

func (d *GPIODriver) powerOn() {
	d.Supply.High()
}

func (d *GPIODriver) powerOff() {
	d.Supply.Low()
}

func (d *GPIODriver) writeTarget(targetDeg int) {
	if targetDeg >= d.last {
		d.Direction.High()
	} else {
		d.Direction.Low()
	}
	d.last = targetDeg
}
