// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"image"
)

// markerRadius is the radius of the event marker discs.
const markerRadius = 3

// windowPad is the left padding reserved for value labels.
const windowPad = 40

// Window renders one finite scalar buffer in full on each update,
// with markers at caller-supplied event indices. It is purely
// reactive: there is no frame loop, and redraws happen only on
// UpdateData and UpdateHeight.
//
// Event indices must be valid offsets into the buffer passed in the
// same update; the renderer does not validate them.
type Window struct {
	cfg Config

	width, height int
	img           *image.RGBA

	values []float64
	events []int

	closed       bool
	cancelResize func()
}

// NewWindow returns a window renderer for the given configuration.
func NewWindow(cfg Config) *Window {
	w := &Window{cfg: cfg}
	w.provision(cfg.Width, cfg.Height)
	if cfg.Resize != nil {
		w.cancelResize = cfg.Resize.Subscribe(func(width int) {
			w.provision(width, w.height)
		})
	}
	return w
}

func (w *Window) provision(width, height int) {
	w.width = width
	w.height = height
	w.img = image.NewRGBA(image.Rect(0, 0, width, height))
	w.redraw()
}

// UpdateData replaces the buffer and event indices and redraws
// synchronously.
func (w *Window) UpdateData(values []float64, events []int) {
	if w.closed {
		return
	}
	w.values = values
	w.events = events
	w.redraw()
}

// UpdateHeight resizes the surface and redraws the retained buffer.
func (w *Window) UpdateHeight(height int) {
	if w.closed {
		return
	}
	w.provision(w.width, height)
}

func (w *Window) redraw() {
	fill(w.img, colorBG)
	if len(w.values) == 0 {
		return
	}
	w.drawGrid()
	graphW := w.width - windowPad
	n := len(w.values)
	col := w.cfg.Colors[0]
	prevX, prevY := 0, 0
	for i, v := range w.values {
		x := windowPad + int(float64(i)/float64(n)*float64(graphW))
		y := scaleY(v, w.cfg.Min, w.cfg.Max, w.height)
		if i != 0 {
			line(w.img, prevX, prevY, x, y, col)
		}
		prevX, prevY = x, y
	}
	marker := colorText
	if len(w.cfg.Colors) > 1 {
		marker = w.cfg.Colors[1]
	}
	for _, i := range w.events {
		x := windowPad + int(float64(i)/float64(n)*float64(graphW))
		y := scaleY(w.values[i], w.cfg.Min, w.cfg.Max, w.height)
		fillCircle(w.img, x, y, markerRadius, marker)
	}
	w.drawTimeAxis()
}

// drawGrid draws horizontal lines and value labels at quartiles of
// the domain.
func (w *Window) drawGrid() {
	for i := 0; i <= 4; i++ {
		v := w.cfg.Max - float64(i)*(w.cfg.Max-w.cfg.Min)/4
		y := scaleY(v, w.cfg.Min, w.cfg.Max, w.height)
		if i != 0 && i != 4 {
			line(w.img, windowPad, y, w.width-1, y, colorGrid)
		}
		ty := y + int(labelFont.YAdvance)/2
		if i == 0 {
			ty = int(labelFont.YAdvance)
		} else if i == 4 {
			ty = w.height - 4
		}
		text := formatValue(v)
		if i == 0 && w.cfg.Unit != "" {
			text += w.cfg.Unit
		}
		label(w.img, 2, ty, text, colorText)
	}
}

// drawTimeAxis draws second ticks along the bottom edge derived from
// the buffer index and the nominal sample rate.
func (w *Window) drawTimeAxis() {
	if w.cfg.Rate <= 0 {
		return
	}
	graphW := w.width - windowPad
	n := len(w.values)
	seconds := float64(n) / w.cfg.Rate
	for t := 1; float64(t) < seconds; t++ {
		i := float64(t) * w.cfg.Rate
		x := windowPad + int(i/float64(n)*float64(graphW))
		line(w.img, x, w.height-6, x, w.height-1, colorGrid)
		label(w.img, x+2, w.height-4, fmt.Sprintf("%ds", t), colorText)
	}
}

// Image returns the rendering surface.
func (w *Window) Image() image.Image { return w.img }

// Size returns the current pixel dimensions of the surface.
func (w *Window) Size() (width, height int) { return w.width, w.height }

// Close detaches the renderer from its host. It is safe to call
// multiple times.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	if w.cancelResize != nil {
		w.cancelResize()
	}
}
