package motor

import "testing"

type fakeDriver struct {
	poweredOn  bool
	onCount    int
	offCount   int
	lastTarget int
}

func (d *fakeDriver) powerOn() {
	d.poweredOn = true
	d.onCount++
}

func (d *fakeDriver) powerOff() {
	d.poweredOn = false
	d.offCount++
}

func (d *fakeDriver) writeTarget(targetDeg int) {
	d.lastTarget = targetDeg
}

func TestAttachAndWriteEnergisesOnce(t *testing.T) {
	d := &fakeDriver{}
	a := New(d)

	a.AttachAndWrite(90)
	a.AttachAndWrite(100)
	a.AttachAndWrite(110)

	if d.onCount != 1 {
		t.Fatalf("powerOn called %d times, want 1 (idempotent attach)", d.onCount)
	}
	if d.lastTarget != 110 {
		t.Fatalf("lastTarget = %d, want 110", d.lastTarget)
	}
	if !a.Attached() {
		t.Fatalf("Attached() = false, want true")
	}
}

func TestDetachIsIdempotent(t *testing.T) {
	d := &fakeDriver{}
	a := New(d)

	a.Detach()
	if d.offCount != 0 {
		t.Fatalf("powerOff called on an already-detached actuator")
	}

	a.AttachAndWrite(50)
	a.Detach()
	a.Detach()

	if d.offCount != 1 {
		t.Fatalf("powerOff called %d times, want 1", d.offCount)
	}
	if a.Attached() {
		t.Fatalf("Attached() = true after Detach")
	}
}

func TestReattachAfterDetachPowersOnAgain(t *testing.T) {
	d := &fakeDriver{}
	a := New(d)

	a.AttachAndWrite(20)
	a.Detach()
	a.AttachAndWrite(30)

	if d.onCount != 2 {
		t.Fatalf("powerOn called %d times across two attach cycles, want 2", d.onCount)
	}
}
