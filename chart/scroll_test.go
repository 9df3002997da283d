// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"image/color"
	"testing"
	"time"
)

func TestHistoryRetention(t *testing.T) {
	h := NewHistory(320, 100, 300, nil,
		Series{Name: "bpm", Max: 200, Color: color.RGBA{R: 0xff, A: 0xff}, Fill: true})
	defer h.Close()

	for v := 70; v <= 70+400; v++ {
		h.Add(0, float64(v))
	}
	got := h.Values(0)
	if len(got) != 300 {
		t.Fatalf("unexpected retained length: got:%d want:300", len(got))
	}
	// The first 101 values have been evicted oldest-first.
	if got[0] != 171 {
		t.Errorf("unexpected oldest retained value: got:%v want:171", got[0])
	}
	if got[len(got)-1] != 470 {
		t.Errorf("unexpected newest retained value: got:%v want:470", got[len(got)-1])
	}
}

func TestHistorySinglePointDrawsGridOnly(t *testing.T) {
	trace := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	h := NewHistory(100, 50, 10, nil, Series{Max: 100, Color: trace})
	defer h.Close()

	h.Add(0, 50)
	h.Frame(time.Unix(0, 0))

	// Scan clear of the left axis label, which is drawn in the
	// series color.
	for y := 0; y < 50; y++ {
		for x := 50; x < 100; x++ {
			if h.img.RGBAAt(x, y) == trace {
				t.Fatalf("trace drawn for single point at (%d,%d)", x, y)
			}
		}
	}
}

func TestHistoryRightAnchored(t *testing.T) {
	trace := color.RGBA{G: 0xff, A: 0xff}
	h := NewHistory(100, 50, 10, nil, Series{Max: 100, Color: trace})
	defer h.Close()

	h.Add(0, 50)
	h.Add(0, 50)
	h.Frame(time.Unix(0, 0))

	y := h.scaleSeries(50, 100)
	if got := h.img.RGBAAt(99, y); got != trace {
		t.Errorf("newest sample not anchored to right edge: (99,%d) = %v", y, got)
	}
}

var scaleSeriesTests = []struct {
	name   string
	v, max float64
	height int
	want   int
}{
	{name: "zero_is_bottom", v: 0, max: 100, height: 50, want: 49},
	{name: "max_is_top", v: 100, max: 100, height: 50, want: 0},
	{name: "half", v: 50, max: 100, height: 51, want: 25},
	{name: "above_max_clamps_to_top", v: 1e9, max: 100, height: 50, want: 0},
	{name: "negative_clamps_to_bottom", v: -5, max: 100, height: 50, want: 49},
}

func TestScaleSeries(t *testing.T) {
	for _, test := range scaleSeriesTests {
		t.Run(test.name, func(t *testing.T) {
			h := History{height: test.height}
			got := h.scaleSeries(test.v, test.max)
			if got != test.want {
				t.Errorf("unexpected row for %v/%v: got:%d want:%d", test.v, test.max, got, test.want)
			}
		})
	}
}

func TestHistoryIndependentSeries(t *testing.T) {
	h := NewHistory(200, 100, 200, nil,
		Series{Name: "acc", Max: 2000, Color: color.RGBA{R: 0xff, A: 0xff}},
		Series{Name: "gyro", Max: 1000, Color: color.RGBA{G: 0xff, A: 0xff}},
		Series{Name: "mag", Max: 120, Color: color.RGBA{B: 0xff, A: 0xff}})
	defer h.Close()

	for i := range 50 {
		h.Add(0, float64(i))
	}
	h.Add(2, 60)
	if got, want := len(h.Values(0)), 50; got != want {
		t.Errorf("unexpected series 0 length: got:%d want:%d", got, want)
	}
	if got, want := len(h.Values(1)), 0; got != want {
		t.Errorf("unexpected series 1 length: got:%d want:%d", got, want)
	}
	if got, want := len(h.Values(2)), 1; got != want {
		t.Errorf("unexpected series 2 length: got:%d want:%d", got, want)
	}
	// Repainting with unbalanced series must not disturb the data.
	h.Frame(time.Unix(0, 0))
	if got, want := len(h.Values(0)), 50; got != want {
		t.Errorf("repaint disturbed series 0: got:%d want:%d", got, want)
	}
}

func TestHistoryCloseIdempotent(t *testing.T) {
	var resize Notifier
	h := NewHistory(100, 50, 10, &resize, Series{Max: 100, Color: color.RGBA{R: 0xff, A: 0xff}})
	h.Close()
	h.Close()
	h.Add(0, 1)
	if len(h.Values(0)) != 0 {
		t.Errorf("add mutated a closed chart")
	}
	resize.Publish(300)
	if h.width != 100 {
		t.Errorf("resize applied to a closed chart: width:%d", h.width)
	}
}
