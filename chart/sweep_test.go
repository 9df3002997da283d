// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func testSweepConfig(width, height int, rate float64, advance, erase int) Config {
	return Config{
		Width: width, Height: height,
		Min: -10, Max: 10,
		Rate:    rate,
		Colors:  []color.RGBA{{R: 0xff, A: 0xff}},
		Advance: advance,
		Erase:   erase,
	}
}

func scalarField(v float64) []float64 { return []float64{v} }

func TestSweepCursorAdvance(t *testing.T) {
	buf := make([]float64, 20)
	c := NewSweep(testSweepConfig(100, 21, 100, 1, 4), scalarField, buf)

	now := time.Unix(0, 0)
	c.Frame(now) // Prime the clock; no samples drawn.
	if c.cursor != 0 {
		t.Fatalf("unexpected cursor after priming frame: got:%d want:0", c.cursor)
	}
	// 100 Hz at 10ms per frame is one sample per frame.
	for i := 1; i <= 5; i++ {
		now = now.Add(10 * time.Millisecond)
		c.Frame(now)
	}
	if c.cursor != 5 {
		t.Errorf("unexpected cursor: got:%d want:5", c.cursor)
	}

	// A mid-playback update discards the unconsumed remainder and
	// restarts at the new buffer, keeping the pen position.
	penCount := c.count
	c.UpdateData(make([]float64, 10))
	if c.cursor != 0 {
		t.Errorf("unexpected cursor after update: got:%d want:0", c.cursor)
	}
	if c.count != penCount {
		t.Errorf("pen state reset by update: got:%d want:%d", c.count, penCount)
	}
}

func TestSweepFrameDeltaClamp(t *testing.T) {
	buf := make([]float64, 1000)
	c := NewSweep(testSweepConfig(100, 21, 100, 1, 4), scalarField, buf)

	now := time.Unix(0, 0)
	c.Frame(now)
	// A stall is bounded to a 40ms catch-up burst: 4 samples at
	// 100 Hz, not 100.
	now = now.Add(time.Second)
	c.Frame(now)
	if c.cursor != 4 {
		t.Errorf("unexpected catch-up burst: got:%d want:4", c.cursor)
	}
}

func TestSweepPenPositionFrameIndependence(t *testing.T) {
	const (
		rate    = 100.0
		advance = 3
		width   = 50
	)
	irregular := []time.Duration{
		5 * time.Millisecond, 40 * time.Millisecond, time.Millisecond,
		14 * time.Millisecond, 40 * time.Millisecond, 20 * time.Millisecond,
	}
	var total time.Duration
	for _, d := range irregular {
		total += d
	}
	uniform := make([]time.Duration, 6)
	for i := range uniform {
		uniform[i] = total / 6
	}

	run := func(deltas []time.Duration) (count uint64, penX int) {
		c := NewSweep(testSweepConfig(width, 21, rate, advance, 4), scalarField, make([]float64, 1000))
		now := time.Unix(0, 0)
		c.Frame(now)
		for _, d := range deltas {
			now = now.Add(d)
			c.Frame(now)
		}
		return c.count, c.prevX
	}

	gotCount, gotX := run(irregular)
	wantCount, wantX := run(uniform)
	if gotCount != wantCount || gotX != wantX {
		t.Errorf("pen position depends on frame distribution: got:%d@%d want:%d@%d",
			gotCount, gotX, wantCount, wantX)
	}
	// The pen rests on the most recently drawn sample.
	if want := int((gotCount - 1) * advance % width); gotX != want {
		t.Errorf("unexpected pen position after %d samples: got:%d want:%d", gotCount, gotX, want)
	}
}

var eraseSpanTests = []struct {
	name                    string
	x, erase, width, height int
	want                    []image.Rectangle
}{
	{
		name: "no_wrap",
		x:    10, erase: 4, width: 100, height: 20,
		want: []image.Rectangle{image.Rect(11, 0, 15, 20)},
	},
	{
		name: "exact_fit",
		x:    95, erase: 4, width: 100, height: 20,
		want: []image.Rectangle{image.Rect(96, 0, 100, 20)},
	},
	{
		name: "wraps_right_edge",
		x:    97, erase: 10, width: 100, height: 20,
		want: []image.Rectangle{
			image.Rect(98, 0, 100, 20),
			image.Rect(0, 0, 8, 20),
		},
	},
	{
		name: "pen_at_last_column",
		x:    99, erase: 4, width: 100, height: 20,
		want: []image.Rectangle{image.Rect(0, 0, 4, 20)},
	},
	{
		name: "zero_width",
		x:    10, erase: 0, width: 100, height: 20,
		want: nil,
	},
	{
		name: "erase_spans_surface",
		x:    10, erase: 200, width: 100, height: 20,
		want: []image.Rectangle{image.Rect(0, 0, 100, 20)},
	},
}

func TestEraseSpan(t *testing.T) {
	for _, test := range eraseSpanTests {
		t.Run(test.name, func(t *testing.T) {
			got := eraseSpan(test.x, test.erase, test.width, test.height)
			if len(got) != len(test.want) {
				t.Fatalf("unexpected erase rectangles: got:%v want:%v", got, test.want)
			}
			surface := image.Rect(0, 0, test.width, test.height)
			for i, r := range got {
				if r != test.want[i] {
					t.Errorf("unexpected erase rectangles: got:%v want:%v", got, test.want)
				}
				if !r.In(surface) {
					t.Errorf("erase rectangle exceeds surface: %v not in %v", r, surface)
				}
			}
		})
	}
}

func TestSweepTraceEndToEnd(t *testing.T) {
	const (
		width  = 30
		height = 21
	)
	buf := make([]float64, 20)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = 10
		} else {
			buf[i] = -10
		}
	}
	c := NewSweep(testSweepConfig(width, height, 10, 1, 4), scalarField, buf)

	now := time.Unix(0, 0)
	c.Frame(now)
	for range 100 {
		now = now.Add(40 * time.Millisecond)
		c.Frame(now)
		if c.cursor == len(buf) {
			break
		}
	}
	if c.cursor != len(buf) {
		t.Fatalf("buffer not exhausted: cursor:%d", c.cursor)
	}

	trace := c.cfg.Colors[0]
	for k := range buf {
		wantY := 0
		if k%2 != 0 {
			wantY = height - 1
		}
		if got := c.dynamic.NRGBAAt(k, wantY); got.A == 0 || got.R != trace.R {
			t.Errorf("missing trace at sample %d: (%d,%d) = %v", k, k, wantY, got)
		}
	}
}

func TestSweepWrapSeam(t *testing.T) {
	const width = 10
	c := NewSweep(testSweepConfig(width, 21, 100, 1, 2), scalarField, make([]float64, 15))

	now := time.Unix(0, 0)
	c.Frame(now)
	for range 20 {
		now = now.Add(10 * time.Millisecond)
		c.Frame(now)
	}
	if c.cursor != 15 {
		t.Fatalf("buffer not exhausted: cursor:%d", c.cursor)
	}
	// 15 samples over a 10 pixel surface wraps once; the pen ends
	// at column 4.
	if want := 4; c.prevX != want {
		t.Errorf("unexpected pen position after wrap: got:%d want:%d", c.prevX, want)
	}
}

func TestSweepCloseIdempotent(t *testing.T) {
	var resize Notifier
	cfg := testSweepConfig(100, 21, 100, 1, 4)
	cfg.Resize = &resize
	c := NewSweep(cfg, scalarField, make([]float64, 10))

	c.Close()
	c.Close()

	now := time.Unix(0, 0)
	c.Frame(now)
	c.Frame(now.Add(time.Second))
	if c.cursor != 0 {
		t.Errorf("frame advanced a closed chart: cursor:%d", c.cursor)
	}
	c.UpdateData(make([]float64, 5))
	if len(c.buf) != 10 {
		t.Errorf("update mutated a closed chart")
	}
}

func TestSweepResizeReinitializes(t *testing.T) {
	var resize Notifier
	cfg := testSweepConfig(100, 21, 100, 1, 4)
	cfg.Resize = &resize
	c := NewSweep(cfg, scalarField, make([]float64, 50))

	now := time.Unix(0, 0)
	c.Frame(now)
	for range 5 {
		now = now.Add(10 * time.Millisecond)
		c.Frame(now)
	}
	cursor := c.cursor

	resize.Publish(200)
	if c.width != 200 {
		t.Errorf("resize not applied: width:%d", c.width)
	}
	if c.count != 0 || c.started {
		t.Errorf("pen state not reset by resize")
	}
	if c.cursor != cursor {
		t.Errorf("buffer cursor lost by resize: got:%d want:%d", c.cursor, cursor)
	}
	if got := c.img.Bounds().Dx(); got != 200 {
		t.Errorf("surface not reprovisioned: width:%d", got)
	}
}
