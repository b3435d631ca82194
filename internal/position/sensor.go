// Package position implements a denoised bolt-angle reading derived from a
// raw analog feedback pin, compensated for whether the motor is currently
// powered.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/doorlock.
package position

import "sort"

// rawSampler is the minimal hardware collaborator: a single raw feedback
// reading from the analog pin, grounded on soc/nxp/i2c.I2C.Read's
// single-shot register-read idiom.
type rawSampler interface {
	ReadRaw() int
}

// Anchors is one calibration pair: the raw feedback values observed at the
// lock and unlock positions during the bringup calibration procedure.
type Anchors struct {
	MinRaw, MaxRaw int
	MinDeg, MaxDeg int
}

// degrees linearly maps a raw feedback value to degrees using this anchor
// pair. Two distinct Anchors values exist per Sensor (powered/unpowered)
// because the feedback potentiometer drifts with drive state; using the
// wrong pair introduces several degrees of systematic bias.
func (a Anchors) degrees(raw int) int {
	if a.MaxRaw == a.MinRaw {
		return a.MinDeg
	}
	span := a.MaxDeg - a.MinDeg
	return a.MinDeg + (raw-a.MinRaw)*span/(a.MaxRaw-a.MinRaw)
}

// Sensor is PositionSensor: it samples the raw feedback pin, denoises the
// reading, and maps it to degrees using whichever of its two calibration
// tables matches the motor's current power state.
type Sensor struct {
	raw rawSampler

	Powered   Anchors
	Unpowered Anchors

	// poweredFn reports whether the motor is currently energized, so
	// Sample can select the correct anchor table. It is supplied by the
	// motor actuator rather than tracked independently, since motor power
	// is touched by exactly one component.
	poweredFn func() bool
}

// New returns a Sensor reading raw feedback from raw, using isPowered to
// select between the two calibration tables on each Sample call.
func New(raw rawSampler, isPowered func() bool) *Sensor {
	return &Sensor{raw: raw, poweredFn: isPowered}
}

// Sample returns a denoised angle in degrees: N=5 raw readings taken in
// rapid succession, sorted, with the highest and lowest discarded, then the
// middle three averaged.
func (s *Sensor) Sample() int {
	const n = 5

	readings := make([]int, n)
	for i := range readings {
		readings[i] = s.raw.ReadRaw()
	}
	sort.Ints(readings)

	middle := readings[1 : n-1]
	sum := 0
	for _, v := range middle {
		sum += v
	}
	avgRaw := sum / len(middle)

	if s.poweredFn() {
		return s.Powered.degrees(avgRaw)
	}
	return s.Unpowered.degrees(avgRaw)
}
