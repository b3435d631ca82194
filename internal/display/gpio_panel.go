//go:build tamago && arm

// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package display

import "github.com/usbarmory/doorlock/soc/nxp/gpio"

// GPIOPanel drives a 5x5 dot-matrix panel over a row-select/column-data
// GPIO pin pair, bit-banged one row at a time. Grounded on
// board/usbarmory/mk2/led.go's Pin.High/Low idiom, generalised from a
// single named on/off output to a small raster.
type GPIOPanel struct {
	RowSelect []*gpio.Pin
	ColData   []*gpio.Pin
}

// NewGPIOPanel returns a panel bound to the given row-select and
// column-data pins, configuring them all as outputs.
func NewGPIOPanel(rowSelect, colData []*gpio.Pin) *GPIOPanel {
	for _, p := range rowSelect {
		p.Out()
	}
	for _, p := range colData {
		p.Out()
	}
	return &GPIOPanel{RowSelect: rowSelect, ColData: colData}
}

// WriteGlyph strobes each row in turn, driving its column pins to the
// glyph's bit pattern for that row.
func (p *GPIOPanel) WriteGlyph(rows [5]byte) {
	for r, row := range rows {
		if r >= len(p.RowSelect) {
			break
		}
		p.RowSelect[r].High()

		for c, col := range p.ColData {
			if row&(1<<uint(len(p.ColData)-1-c)) != 0 {
				col.High()
			} else {
				col.Low()
			}
		}

		p.RowSelect[r].Low()
	}
}
