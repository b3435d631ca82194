package display

import (
	"testing"

	"github.com/usbarmory/doorlock/internal/lockfsm"
)

type fakePanel struct {
	writes int
	last   [5]byte
}

func (p *fakePanel) WriteGlyph(rows [5]byte) {
	p.writes++
	p.last = rows
}

func TestShowDrawsOnFirstCall(t *testing.T) {
	p := &fakePanel{}
	d := New(p)

	d.Show(lockfsm.Locked)

	if p.writes != 1 {
		t.Fatalf("writes = %d, want 1", p.writes)
	}
}

func TestShowSkipsRedundantRedraw(t *testing.T) {
	p := &fakePanel{}
	d := New(p)

	d.Show(lockfsm.Locked)
	d.Show(lockfsm.Locked)
	d.Show(lockfsm.Locked)

	if p.writes != 1 {
		t.Fatalf("writes = %d, want 1 (no redraw on unchanged state)", p.writes)
	}
}

func TestShowRedrawsOnStateChange(t *testing.T) {
	p := &fakePanel{}
	d := New(p)

	d.Show(lockfsm.Locked)
	d.Show(lockfsm.Unlocked)

	if p.writes != 2 {
		t.Fatalf("writes = %d, want 2", p.writes)
	}
}

func TestShowPanicsOnUnknownState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unregistered state")
		}
	}()

	p := &fakePanel{}
	d := New(p)
	d.Show(lockfsm.State(99))
}

func TestEveryStateHasAGlyph(t *testing.T) {
	states := []lockfsm.State{
		lockfsm.CalibrateLock, lockfsm.CalibrateUnlock, lockfsm.Unlocked,
		lockfsm.Locked, lockfsm.BusyWait, lockfsm.BusyMove, lockfsm.Bad,
	}
	for _, s := range states {
		if _, ok := glyphs[s]; !ok {
			t.Errorf("state %v has no registered glyph", s)
		}
	}
}
