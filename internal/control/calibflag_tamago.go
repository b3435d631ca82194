//go:build tamago && arm

// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package control

import "github.com/usbarmory/doorlock/arm"

// HardwareCalibFlag is the one interrupt-crossing shared variable in the
// system: set by the calibration-button edge handler, cleared by the
// control loop. Both accesses happen inside a disable/enable-interrupts
// window rather than via sync/atomic, since atomic dressing would mask the
// two-instruction critical section the hardware actually needs.
type HardwareCalibFlag struct {
	CPU *arm.CPU

	pressed bool
}

// SetFromISR is called by the board's calibration-button edge handler. It
// must only ever be called with interrupts already disabled, as is true of
// any ARM IRQ handler.
func (f *HardwareCalibFlag) SetFromISR() {
	f.pressed = true
}

// ConsumeAndClear reads and clears the flag inside a disable/enable
// interrupts critical section of exactly two accesses.
func (f *HardwareCalibFlag) ConsumeAndClear() bool {
	f.CPU.DisableInterrupts()
	v := f.pressed
	f.pressed = false
	f.CPU.EnableInterrupts()
	return v
}
