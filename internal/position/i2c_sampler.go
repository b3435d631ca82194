//go:build tamago && arm

// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package position

import "github.com/usbarmory/doorlock/soc/nxp/i2c"

// feedbackAddr is the feedback potentiometer's register address on the
// analog-to-digital front end wired to the board's I2C bus.
const feedbackAddr = 0x00

// I2CSampler reads the raw feedback potentiometer value over I2C, adapting
// soc/nxp/i2c.I2C.Read's single-shot register-read idiom to the rawSampler
// interface Sensor requires.
type I2CSampler struct {
	Bus    *i2c.I2C
	Target uint8
}

// ReadRaw performs one I2C read of the feedback register. A bus error is
// folded into a zero reading: the N=5 sample/sort/trim algorithm already
// tolerates a single outlier sample, and a persistently faulting bus will
// show up as a Sensor reading stuck at the angle the active table maps raw 0
// to (Anchors.degrees does not clamp) rather than a silent crash.
func (s *I2CSampler) ReadRaw() int {
	buf, err := s.Bus.Read(s.Target, feedbackAddr, 1, 2)
	if err != nil || len(buf) < 2 {
		return 0
	}
	return int(buf[0])<<8 | int(buf[1])
}
