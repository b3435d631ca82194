package position

import "testing"

func TestSampleDiscardsOutliers(t *testing.T) {
	// Sorted ascending -> [500,500,500,500,9999]; drop lowest (500) and
	// highest (9999), middle three = [500,500,500] -> avg 500.
	s := newTestSensor([]int{500, 500, 9999, 500, 500}, true)
	got := s.Sample()
	want := Anchors{MinRaw: 100, MaxRaw: 900, MinDeg: 0, MaxDeg: 180}.degrees(500)
	if got != want {
		t.Fatalf("Sample() = %d, want %d", got, want)
	}
}

func TestSampleDiscardsSingleLowOutlier(t *testing.T) {
	s := newTestSensor([]int{0, 500, 510, 520, 530}, true)
	got := s.Sample()
	// sorted: [0,500,510,520,530], middle three -> [500,510,520], avg 510
	want := Anchors{MinRaw: 100, MaxRaw: 900, MinDeg: 0, MaxDeg: 180}.degrees(510)
	if got != want {
		t.Fatalf("Sample() = %d, want %d", got, want)
	}
}

func TestSampleUsesPoweredTableWhenPowered(t *testing.T) {
	s := newTestSensor([]int{500, 500, 500, 500, 500}, true)
	got := s.Sample()
	want := s.Powered.degrees(500)
	if got != want {
		t.Fatalf("powered Sample() = %d, want %d", got, want)
	}
}

func TestSampleUsesUnpoweredTableWhenUnpowered(t *testing.T) {
	s := newTestSensor([]int{500, 500, 500, 500, 500}, false)
	got := s.Sample()
	want := s.Unpowered.degrees(500)
	if got != want {
		t.Fatalf("unpowered Sample() = %d, want %d", got, want)
	}

	// The two tables must disagree on at least one input, or this test
	// would pass even if the powered/unpowered branch were swapped.
	if s.Powered.degrees(500) == s.Unpowered.degrees(500) {
		t.Fatalf("test fixture's two anchor tables must differ at raw=500")
	}
}

func TestAnchorsDegreesLinearMapping(t *testing.T) {
	a := Anchors{MinRaw: 0, MaxRaw: 1000, MinDeg: 0, MaxDeg: 180}
	cases := map[int]int{0: 0, 1000: 180, 500: 90}
	for raw, want := range cases {
		if got := a.degrees(raw); got != want {
			t.Errorf("degrees(%d) = %d, want %d", raw, got, want)
		}
	}
}

func TestAnchorsDegreesDegenerateSpan(t *testing.T) {
	a := Anchors{MinRaw: 500, MaxRaw: 500, MinDeg: 90, MaxDeg: 90}
	if got := a.degrees(123); got != 90 {
		t.Fatalf("degenerate span degrees() = %d, want 90", got)
	}
}
