// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"image"
	"image/draw"
	"math"
	"strconv"
	"time"
)

// Sweep is an oscilloscope-style renderer. The pen advances rightward
// at a constant pixel rate per sample and wraps to the left edge at
// the end of the surface, clearing a short window ahead of itself so
// stale trace is overwritten rather than accumulated. Samples are
// consumed from the current buffer strictly in order, paced by the
// nominal sample rate against observed frame time.
//
// A Sweep is not safe for concurrent use; all methods must be called
// from the goroutine driving Frame.
type Sweep[T any] struct {
	cfg     Config
	extract func(T) []float64

	width, height int
	static        *image.RGBA  // grid and annotations, drawn on provision only
	dynamic       *image.NRGBA // live trace, erased ahead of the pen
	img           *image.RGBA  // composite of static and dynamic

	buf    []T
	cursor int

	count   uint64 // monotonic count of samples drawn
	acc     float64
	last    time.Time
	prevX   int
	prev    []image.Point
	started bool

	closed       bool
	cancelResize func()
}

// NewSweep returns a sweep renderer for the given configuration.
// The extract function maps one sample to its plotted field values,
// ordered to match cfg.Colors. buf may be nil or empty; playback
// idles until UpdateData supplies samples.
func NewSweep[T any](cfg Config, extract func(T) []float64, buf []T) *Sweep[T] {
	c := &Sweep[T]{
		cfg:     cfg,
		extract: extract,
		buf:     buf,
		prev:    make([]image.Point, len(cfg.Colors)),
	}
	c.provision(cfg.Width, cfg.Height)
	if cfg.Resize != nil {
		c.cancelResize = cfg.Resize.Subscribe(func(width int) {
			c.provision(width, c.height)
		})
	}
	return c
}

// provision allocates the layers for the given dimensions, redraws
// the static background and resets pen state. The buffer cursor is
// retained so playback position in the data is not lost.
func (c *Sweep[T]) provision(width, height int) {
	c.width = width
	c.height = height
	r := image.Rect(0, 0, width, height)
	c.static = image.NewRGBA(r)
	c.dynamic = image.NewNRGBA(r)
	c.img = image.NewRGBA(r)
	c.drawBackground()
	clearRect(c.dynamic, c.dynamic.Bounds())
	c.count = 0
	c.acc = 0
	c.prevX = -1
	c.started = false
	for i := range c.prev {
		c.prev[i] = image.Point{}
	}
	c.render()
}

func (c *Sweep[T]) drawBackground() {
	fill(c.static, colorBG)
	for i := 1; i < 4; i++ {
		y := i * (c.height - 1) / 4
		line(c.static, 0, y, c.width-1, y, colorGrid)
	}
	label(c.static, 2, int(labelFont.YAdvance), formatValue(c.cfg.Max), colorText)
	label(c.static, 2, c.height-4, formatValue(c.cfg.Min), colorText)
	if c.cfg.Unit != "" {
		label(c.static, 2, (c.height+int(labelFont.YAdvance))/2, c.cfg.Unit, colorText)
	}
}

// UpdateData replaces the sample buffer and resets the playback cursor
// to its start. Any unconsumed remainder of the previous buffer is
// discarded. The pen position is unchanged, so drawing continues from
// the current sweep location.
func (c *Sweep[T]) UpdateData(buf []T) {
	if c.closed {
		return
	}
	c.buf = buf
	c.cursor = 0
}

// UpdateHeight resizes the surface, reinitializing both layers and
// the pen state.
func (c *Sweep[T]) UpdateHeight(height int) {
	if c.closed {
		return
	}
	c.provision(c.width, height)
}

// Frame advances playback by the time elapsed since the previous call,
// clamped to a 40ms catch-up bound. The number of samples drawn is
// the integer part of rate×Δt accumulated across frames; fractional
// samples carry to the next call. When the buffer is exhausted the
// call is a no-op until new data arrives.
func (c *Sweep[T]) Frame(now time.Time) {
	if c.closed {
		return
	}
	if c.last.IsZero() {
		c.last = now
		return
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt <= 0 {
		return
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	c.acc += c.cfg.Rate * dt.Seconds()
	n := int(c.acc)
	c.acc -= float64(n)
	drew := false
	for ; n > 0 && c.cursor < len(c.buf); n-- {
		c.step(c.buf[c.cursor])
		c.cursor++
		drew = true
	}
	if drew {
		c.render()
	}
}

// step draws a single sample at the next pen position.
func (c *Sweep[T]) step(s T) {
	x := int(c.count * uint64(c.cfg.Advance) % uint64(c.width))
	wrapped := x < c.prevX
	for _, r := range eraseSpan(x, c.cfg.Erase, c.width, c.height) {
		clearRect(c.dynamic, r)
	}
	vals := c.extract(s)
	for i, col := range c.cfg.Colors {
		var v float64
		if i < len(vals) {
			v = vals[i]
		}
		y := scaleY(v, c.cfg.Min, c.cfg.Max, c.height)
		if !c.started || wrapped {
			// No segment is drawn across the wrap seam.
			c.dynamic.Set(x, y, col)
		} else {
			line(c.dynamic, c.prev[i].X, c.prev[i].Y, x, y, col)
		}
		c.prev[i] = image.Pt(x, y)
	}
	c.started = true
	c.prevX = x
	c.count++
}

// eraseSpan returns the rectangles to clear ahead of a pen at x,
// starting one pixel past x and extending erase pixels, wrapping
// through zero at the right edge.
func eraseSpan(x, erase, width, height int) []image.Rectangle {
	if erase <= 0 {
		return nil
	}
	if erase >= width {
		return []image.Rectangle{image.Rect(0, 0, width, height)}
	}
	start := (x + 1) % width
	end := start + erase
	if end <= width {
		return []image.Rectangle{image.Rect(start, 0, end, height)}
	}
	return []image.Rectangle{
		image.Rect(start, 0, width, height),
		image.Rect(0, 0, end-width, height),
	}
}

func (c *Sweep[T]) render() {
	draw.Draw(c.img, c.img.Bounds(), c.static, image.Point{}, draw.Src)
	draw.Draw(c.img, c.img.Bounds(), c.dynamic, image.Point{}, draw.Over)
}

// Image returns the composited rendering surface. The returned image
// is reused across frames.
func (c *Sweep[T]) Image() image.Image { return c.img }

// Size returns the current pixel dimensions of the surface.
func (c *Sweep[T]) Size() (width, height int) { return c.width, c.height }

// Close stops the renderer and detaches size observation. It is safe
// to call multiple times. After Close all methods are no-ops.
func (c *Sweep[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.cancelResize != nil {
		c.cancelResize()
	}
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}
