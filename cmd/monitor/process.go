// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"time"

	"github.com/kortschak/verity/internal/ring"
	"github.com/kortschak/verity/pmd"
)

const (
	// pulseWindow is the length of the sliding analysis window.
	pulseWindow = 10 * time.Second

	// pulsePeriod limits how often a full window is re-analyzed.
	pulsePeriod = time.Second

	// beatSeparation is the refractory interval between detected
	// beats.
	beatSeparation = 400 * time.Millisecond

	// beatHeight is the minimum normalized amplitude of a beat.
	beatHeight = 0.5
)

// pulseProcessor derives a normalized pulse trace, beat indices and a
// rate estimate from a sliding window of the first PPG channel. It is
// the analysis stage feeding the pulse window chart; the chart itself
// performs no signal processing.
type pulseProcessor struct {
	fs      int
	window  *ring.Buffer[float64]
	last    time.Time
	scratch []float64
}

func newPulseProcessor(fs int) *pulseProcessor {
	n := fs * int(pulseWindow/time.Second)
	return &pulseProcessor{
		fs:      fs,
		window:  ring.NewBuffer[float64](n),
		scratch: make([]float64, n),
	}
}

// process appends samples to the analysis window and, at most once
// per second once the window is full, returns the normalized trace,
// the indices of detected beats within it, and the beat rate implied
// by their count. ok reports whether a new analysis was produced.
func (p *pulseProcessor) process(samples []pmd.PPGSample, now time.Time) (values []float64, beats []int, bpm float64, ok bool) {
	for _, s := range samples {
		p.window.Push(float64(s[0]))
	}
	if p.window.Len() < p.window.Size() {
		return nil, nil, 0, false
	}
	if now.Sub(p.last) < pulsePeriod {
		return nil, nil, 0, false
	}
	p.last = now

	n := p.window.CopyTo(p.scratch)
	values = detrend(p.scratch[:n], p.fs/2)
	normalize(values)
	beats = findBeats(values, p.fs)
	if len(beats) >= 2 {
		duration := float64(len(values)) / float64(p.fs)
		bpm = float64(len(beats)) / duration * 60
	}
	return values, beats, bpm, true
}

// detrend subtracts a centered moving mean of half-width half from v,
// removing the baseline wander that dominates raw PPG.
func detrend(v []float64, half int) []float64 {
	sums := make([]float64, len(v)+1)
	for i, x := range v {
		sums[i+1] = sums[i] + x
	}
	out := make([]float64, len(v))
	for i := range v {
		lo := max(0, i-half)
		hi := min(len(v), i+half+1)
		mean := (sums[hi] - sums[lo]) / float64(hi-lo)
		out[i] = v[i] - mean
	}
	return out
}

// normalize scales v in place to zero mean and unit variance.
func normalize(v []float64) {
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	var ss float64
	for _, x := range v {
		d := x - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(v)))
	if std == 0 {
		return
	}
	for i := range v {
		v[i] = (v[i] - mean) / std
	}
}

// findBeats returns the indices of local maxima of the normalized
// trace that exceed the beat height, keeping only the largest peak
// within each refractory interval.
func findBeats(v []float64, fs int) []int {
	minDist := int(beatSeparation * time.Duration(fs) / time.Second)
	var beats []int
	for i := 1; i < len(v)-1; i++ {
		if v[i] < beatHeight || v[i] < v[i-1] || v[i] <= v[i+1] {
			continue
		}
		if len(beats) != 0 && i-beats[len(beats)-1] < minDist {
			if v[i] > v[beats[len(beats)-1]] {
				beats[len(beats)-1] = i
			}
			continue
		}
		beats = append(beats, i)
	}
	return beats
}
