// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart implements live rendering of telemetry sample streams
// onto image surfaces. Three renderers are provided: Sweep replays a
// sample buffer oscilloscope-style with a wrapping pen and erase-ahead
// window, History scrolls a fixed-capacity series anchored to the right
// edge, and Window redraws one complete buffer with event markers on
// each update.
//
// The self-pacing renderers do not own timers; the host event loop
// calls Frame with the current time once per display frame and each
// renderer converts the observed wall-clock delta into an integer
// number of samples to advance, carrying fractional remainders so the
// trace rate does not drift from the nominal sample rate however frame
// time is distributed.
package chart

import (
	"image/color"
	"math"
	"sync"
	"time"
)

// maxFrameDelta bounds the catch-up burst after a stall. A delta
// longer than this is treated as a single slow frame rather than
// replayed in full.
const maxFrameDelta = 40 * time.Millisecond

// Config holds the immutable parameters of a chart instance.
type Config struct {
	// Width and Height are the pixel dimensions of the
	// rendering surface.
	Width, Height int

	// Min and Max bound the value domain. Values outside the
	// domain are clamped before scaling, never dropped.
	Min, Max float64

	// Rate is the nominal sample rate in Hz.
	Rate float64

	// Unit is the annotation drawn on the chart background.
	Unit string

	// Colors holds one trace color per plotted field.
	Colors []color.RGBA

	// Advance is the horizontal pixel advance per sample and
	// Erase the width of the erase-ahead window, both used only
	// by the sweep renderer.
	Advance, Erase int

	// Resize, if non-nil, notifies the chart of host surface
	// width changes.
	Resize *Notifier
}

// clamp limits v to the interval [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// scaleY maps v, clamped into [min, max], onto a pixel row of a
// surface height pixels tall. min maps to the bottom edge and max
// to the top edge.
func scaleY(v, min, max float64, height int) int {
	v = clamp(v, min, max)
	return int(math.Round((max - v) / (max - min) * float64(height-1)))
}

// A Notifier distributes host surface width changes to subscribed
// charts. The host publishes the new width when its container
// dimensions change; subscribed charts re-provision their surfaces.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]func(width int)
	next int
}

// Subscribe registers f to be called on width changes and returns a
// cancellation function. Cancellation is idempotent.
func (n *Notifier) Subscribe(f func(width int)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(width int))
	}
	id := n.next
	n.next++
	n.subs[id] = f
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish calls all subscribed callbacks with the new width.
func (n *Notifier) Publish(width int) {
	n.mu.Lock()
	subs := make([]func(int), 0, len(n.subs))
	for _, f := range n.subs {
		subs = append(subs, f)
	}
	n.mu.Unlock()
	for _, f := range subs {
		f(width)
	}
}
