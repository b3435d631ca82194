// Package display implements the dot-matrix status mirror: it shows one
// glyph per FSM state. The core control loop's only contract with it is
// Show(state); rendering the glyph on the physical panel is this package's
// concern alone, so the FSM and control loop never need to know about
// pixels.
package display

import "github.com/usbarmory/doorlock/internal/lockfsm"

// glyph is a fixed bitmap for one FSM state, adapting
// board/usbarmory/mk2/led.go's LED(name, on) switch-by-name pattern: there,
// a closed set of named outputs map to on/off; here, a closed set of states
// map to a fixed dot pattern.
type glyph [5]byte

// glyphs holds one fixed bitmap per lockfsm.State, indexed by state. A
// missing entry is a programming error and Show panics rather than
// rendering a blank/garbage frame, matching this system's "reject unknown
// variants" convention.
var glyphs = map[lockfsm.State]glyph{
	lockfsm.CalibrateLock:   {0b00100, 0b01110, 0b10101, 0b01110, 0b00100},
	lockfsm.CalibrateUnlock: {0b00100, 0b01010, 0b10101, 0b01010, 0b00100},
	lockfsm.Locked:          {0b01110, 0b10001, 0b10001, 0b10001, 0b01110},
	lockfsm.Unlocked:        {0b01110, 0b10001, 0b00001, 0b00001, 0b01110},
	lockfsm.BusyWait:        {0b00000, 0b01010, 0b00100, 0b01010, 0b00000},
	lockfsm.BusyMove:        {0b10001, 0b01010, 0b00100, 0b01010, 0b10001},
	lockfsm.Bad:             {0b10001, 0b01010, 0b00100, 0b01010, 0b10001},
}

// panel is the minimal hardware collaborator a Display binds to: a raster
// write of one fixed-size glyph to the dot-matrix panel.
type panel interface {
	WriteGlyph(rows [5]byte)
}

// Display is the status mirror. One instance exists per device; the
// control loop calls Show once per tick, after a state change.
type Display struct {
	panel panel
	last  lockfsm.State
	drawn bool
}

// New returns a Display bound to p.
func New(p panel) *Display {
	return &Display{panel: p}
}

// Show draws the glyph for state, but only when state differs from the
// last one drawn: the panel is touched at most once per FSM transition, not
// once per tick.
func (d *Display) Show(state lockfsm.State) {
	if d.drawn && state == d.last {
		return
	}

	g, ok := glyphs[state]
	if !ok {
		panic("display: no glyph registered for state")
	}

	d.panel.WriteGlyph(g)
	d.last = state
	d.drawn = true
}
