// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"image"
	"image/color"
	"time"

	"github.com/kortschak/verity/internal/ring"
)

// Series describes one scalar series plotted by a History chart.
type Series struct {
	Name string

	// Max is the value mapped to the top of the plot. Values
	// above Max clamp to the top edge; each series is normalized
	// into its own [0, Max] range independently.
	Max float64

	Color color.RGBA

	// Fill draws a low-intensity area beneath the line.
	Fill bool
}

// History renders one or more scalar series scrolling right to left
// in a fixed-capacity window, the most recent value anchored to the
// right edge. The whole visible window is repainted on every Frame
// call, independent of data arrival.
//
// A History is not safe for concurrent use; all methods must be
// called from the goroutine driving Frame.
type History struct {
	series   []Series
	rings    []*ring.Buffer[float64]
	capacity int

	width, height int
	img           *image.RGBA
	scratch       []float64

	closed       bool
	cancelResize func()
}

// NewHistory returns a history renderer with the given capacity per
// series. Each series holds at most capacity values, oldest evicted
// first.
func NewHistory(width, height, capacity int, resize *Notifier, series ...Series) *History {
	h := &History{
		series:   series,
		rings:    make([]*ring.Buffer[float64], len(series)),
		capacity: capacity,
		scratch:  make([]float64, capacity),
	}
	for i := range h.rings {
		h.rings[i] = ring.NewBuffer[float64](capacity)
	}
	h.provision(width, height)
	if resize != nil {
		h.cancelResize = resize.Subscribe(func(width int) {
			h.provision(width, h.height)
		})
	}
	return h
}

func (h *History) provision(width, height int) {
	h.width = width
	h.height = height
	h.img = image.NewRGBA(image.Rect(0, 0, width, height))
	h.repaint()
}

// Add appends one value to the i-th series.
func (h *History) Add(i int, v float64) {
	if h.closed {
		return
	}
	h.rings[i].Push(v)
}

// Values returns the retained values of the i-th series, oldest
// first.
func (h *History) Values(i int) []float64 {
	vals := make([]float64, h.rings[i].Len())
	h.rings[i].CopyTo(vals)
	return vals
}

// Frame repaints the visible window.
func (h *History) Frame(now time.Time) {
	if h.closed {
		return
	}
	h.repaint()
}

func (h *History) repaint() {
	fill(h.img, colorBG)
	for i := 1; i < 4; i++ {
		y := i * (h.height - 1) / 4
		line(h.img, 0, y, h.width-1, y, colorGrid)
	}
	h.drawAxisLabels()
	for i := range h.series {
		h.plotSeries(i)
	}
}

// drawAxisLabels annotates each series' top-of-plot value in the
// series color, the first on the left axis and the remainder stacked
// on the right.
func (h *History) drawAxisLabels() {
	top := int(labelFont.YAdvance)
	for i, s := range h.series {
		text := formatValue(s.Max)
		if s.Name != "" {
			text = s.Name + " " + text
		}
		if i == 0 {
			label(h.img, 2, top, text, s.Color)
			label(h.img, 2, h.height-4, "0", colorText)
			continue
		}
		y := top + (i-1)*(int(labelFont.YAdvance)+2)
		label(h.img, h.width-labelWidth(text)-2, y, text, s.Color)
	}
}

func (h *History) plotSeries(i int) {
	n := h.rings[i].Len()
	if n < 2 {
		// A single point is not a line; leave the grid alone.
		return
	}
	h.rings[i].CopyTo(h.scratch[:n])
	s := h.series[i]
	step := float64(h.width-1) / float64(h.capacity-1)
	dim := color.RGBA{R: s.Color.R / 4, G: s.Color.G / 4, B: s.Color.B / 4, A: 0xff}
	prevX, prevY := 0, 0
	for j := 0; j < n; j++ {
		x := (h.width - 1) - int(float64(n-1-j)*step)
		y := h.scaleSeries(h.scratch[j], s.Max)
		if j != 0 {
			if s.Fill {
				fillUnder(h.img, prevX, prevY, x, y, h.height, dim)
			}
			line(h.img, prevX, prevY, x, y, s.Color)
		}
		prevX, prevY = x, y
	}
}

// scaleSeries normalizes v into [0, max], clamping above max, and
// maps the result onto a pixel row.
func (h *History) scaleSeries(v, max float64) int {
	norm := clamp(v/max, 0, 1)
	return int((1 - norm) * float64(h.height-1))
}

// fillUnder draws the area beneath the segment (x0,y0)-(x1,y1) down
// to the bottom edge.
func fillUnder(img *image.RGBA, x0, y0, x1, y1, height int, c color.RGBA) {
	if x1 <= x0 {
		line(img, x0, y0+1, x0, height-1, c)
		return
	}
	for x := x0; x <= x1; x++ {
		y := y0 + (y1-y0)*(x-x0)/(x1-x0)
		line(img, x, y+1, x, height-1, c)
	}
}

// UpdateHeight resizes the surface and repaints.
func (h *History) UpdateHeight(height int) {
	if h.closed {
		return
	}
	h.provision(h.width, height)
}

// Image returns the rendering surface. The returned image is reused
// across frames.
func (h *History) Image() image.Image { return h.img }

// Size returns the current pixel dimensions of the surface.
func (h *History) Size() (width, height int) { return h.width, h.height }

// Close stops the renderer and detaches size observation. It is safe
// to call multiple times.
func (h *History) Close() {
	if h.closed {
		return
	}
	h.closed = true
	if h.cancelResize != nil {
		h.cancelResize()
	}
}
