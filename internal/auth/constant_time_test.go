package auth

import (
	"crypto/sha256"
	"testing"
	"time"
)

// TestConstantTimeEqualTiming is a statistical check that constantTimeEqual
// does not leak the position of the first mismatching byte: it buckets
// wall-clock samples comparing against a signature that differs in its
// first byte versus one that differs only in its last byte, and asserts
// the two bucket medians don't diverge by an unreasonable factor. Skipped
// under -short since timing measurements are inherently noisy in CI.
func TestConstantTimeEqualTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("timing statistics are noisy; skip under -short")
	}

	const samples = 2000

	expected := make([]byte, sha256.Size)
	for i := range expected {
		expected[i] = byte(i)
	}

	mismatchEarly := append([]byte(nil), expected...)
	mismatchEarly[0] ^= 0xff

	mismatchLate := append([]byte(nil), expected...)
	mismatchLate[len(mismatchLate)-1] ^= 0xff

	earlyDur := medianDuration(samples, func() {
		constantTimeEqual(expected, mismatchEarly)
	})
	lateDur := medianDuration(samples, func() {
		constantTimeEqual(expected, mismatchLate)
	})

	// A position-dependent (short-circuiting) comparison would show the
	// early-mismatch bucket consistently and substantially faster than
	// the late-mismatch bucket. Allow generous slack: only fail on a
	// gross divergence, since absolute timings are noisy regardless.
	ratio := float64(lateDur) / float64(earlyDur)
	if ratio > 5 || ratio < 0.2 {
		t.Fatalf("early/late mismatch timing diverges too much: early=%v late=%v ratio=%v", earlyDur, lateDur, ratio)
	}
}

func medianDuration(n int, f func()) time.Duration {
	samples := make([]time.Duration, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		f()
		samples[i] = time.Since(start)
	}

	// Simple insertion sort: n is small enough, and this is test-only code.
	for i := 1; i < len(samples); i++ {
		for j := i; j > 0 && samples[j] < samples[j-1]; j-- {
			samples[j], samples[j-1] = samples[j-1], samples[j]
		}
	}

	return samples[len(samples)/2]
}
