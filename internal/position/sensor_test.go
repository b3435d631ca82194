package position

type fakeRaw struct {
	values []int
	i      int
}

func (f *fakeRaw) ReadRaw() int {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func newTestSensor(values []int, powered bool) *Sensor {
	return &Sensor{
		raw:       &fakeRaw{values: values},
		poweredFn: func() bool { return powered },
		Powered:   Anchors{MinRaw: 100, MaxRaw: 900, MinDeg: 0, MaxDeg: 180},
		Unpowered: Anchors{MinRaw: 120, MaxRaw: 900, MinDeg: 0, MaxDeg: 180},
	}
}
