// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/kortschak/verity/pmd"
)

func TestDetrendConstant(t *testing.T) {
	v := make([]float64, 100)
	for i := range v {
		v[i] = 5000
	}
	got := detrend(v, 27)
	for i, x := range got {
		if x != 0 {
			t.Fatalf("unexpected residual at %d: got:%v want:0", i, x)
		}
	}
}

func TestDetrendRemovesBaseline(t *testing.T) {
	// A slow ramp with a small oscillation riding on it. Detrending
	// must remove the ramp while keeping the oscillation amplitude.
	const n = 550
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(i)*10 + 100*math.Sin(2*math.Pi*float64(i)/50)
	}
	got := detrend(v, 27)
	var peak float64
	for _, x := range got[100 : n-100] {
		peak = math.Max(peak, math.Abs(x))
	}
	if peak < 50 || peak > 200 {
		t.Errorf("oscillation amplitude not preserved: peak:%v", peak)
	}
	var mean float64
	for _, x := range got[100 : n-100] {
		mean += x
	}
	mean /= float64(n - 200)
	if math.Abs(mean) > 10 {
		t.Errorf("baseline not removed: residual mean:%v", mean)
	}
}

func TestNormalize(t *testing.T) {
	v := []float64{3, 7, 3, 7, 3, 7}
	normalize(v)
	var mean, ss float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for _, x := range v {
		ss += (x - mean) * (x - mean)
	}
	std := math.Sqrt(ss / float64(len(v)))
	if math.Abs(mean) > 1e-12 {
		t.Errorf("unexpected mean: got:%v want:0", mean)
	}
	if math.Abs(std-1) > 1e-12 {
		t.Errorf("unexpected standard deviation: got:%v want:1", std)
	}
}

func TestNormalizeFlat(t *testing.T) {
	v := []float64{4, 4, 4}
	normalize(v)
	if !reflect.DeepEqual(v, []float64{4, 4, 4}) {
		t.Errorf("flat input modified: got:%v", v)
	}
}

var findBeatsTests = []struct {
	name string
	v    []float64
	fs   int
	want []int
}{
	{
		name: "empty",
		v:    nil,
		fs:   55,
		want: nil,
	},
	{
		name: "below_threshold",
		v:    []float64{0, 0.4, 0, 0.3, 0},
		fs:   55,
		want: nil,
	},
	{
		name: "isolated_peaks",
		v:    peaksAt(200, 20, 80, 150),
		fs:   55,
		want: []int{20, 80, 150},
	},
	{
		// 55 Hz and 400 ms separation give a 22 sample refractory
		// interval; the larger of the pair must win.
		name: "refractory_keeps_larger",
		v: func() []float64 {
			v := peaksAt(200, 50, 60)
			v[60] = 2
			return v
		}(),
		fs:   55,
		want: []int{60},
	},
	{
		name: "refractory_keeps_first_when_larger",
		v: func() []float64 {
			v := peaksAt(200, 50, 60)
			v[50] = 2
			return v
		}(),
		fs:   55,
		want: []int{50},
	},
}

// peaksAt returns a zero trace of length n with unit peaks at the
// given indices.
func peaksAt(n int, idx ...int) []float64 {
	v := make([]float64, n)
	for _, i := range idx {
		v[i] = 1
	}
	return v
}

func TestFindBeats(t *testing.T) {
	for _, test := range findBeatsTests {
		t.Run(test.name, func(t *testing.T) {
			got := findBeats(test.v, test.fs)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("unexpected beats: got:%v want:%v", got, test.want)
			}
		})
	}
}

func TestPulseProcessorGating(t *testing.T) {
	const fs = 55
	p := newPulseProcessor(fs)
	now := time.Unix(0, 0)

	// Half-filled window produces nothing.
	_, _, _, ok := p.process(makePPG(fs*5, fs, 0), now)
	if ok {
		t.Fatal("analysis produced before window filled")
	}
	// Filling the window triggers the first analysis.
	_, _, _, ok = p.process(makePPG(fs*5, fs, fs*5), now.Add(time.Second))
	if !ok {
		t.Fatal("no analysis after window filled")
	}
	// Within the refresh period no re-analysis happens.
	_, _, _, ok = p.process(makePPG(fs, fs, fs*10), now.Add(1500*time.Millisecond))
	if ok {
		t.Error("analysis produced within refresh period")
	}
	_, _, _, ok = p.process(nil, now.Add(2500*time.Millisecond))
	if !ok {
		t.Error("no analysis after refresh period elapsed")
	}
}

func TestPulseProcessorRate(t *testing.T) {
	const (
		fs      = 55
		beatsHz = 1.2 // 72 bpm
	)
	p := newPulseProcessor(fs)

	// Ten seconds of a 1.2 Hz pulse riding on a wandering baseline.
	samples := makePPG(fs*10, fs, 0)
	values, beats, bpm, ok := p.process(samples, time.Unix(10, 0))
	if !ok {
		t.Fatal("no analysis for a full window")
	}
	if len(values) != fs*10 {
		t.Fatalf("unexpected trace length: got:%d want:%d", len(values), fs*10)
	}
	if len(beats) < 11 || len(beats) > 13 {
		t.Errorf("unexpected beat count for %v Hz pulse: got:%d", beatsHz, len(beats))
	}
	if bpm < 66 || bpm > 78 {
		t.Errorf("unexpected rate: got:%v bpm want:~72", bpm)
	}
}

// makePPG synthesizes n first-channel PPG samples of a 1.2 Hz pulse
// over a slow baseline drift, starting at sample offset off.
func makePPG(n, fs, off int) []pmd.PPGSample {
	samples := make([]pmd.PPGSample, n)
	for i := range samples {
		t := float64(off+i) / float64(fs)
		pulse := 2000 * math.Sin(2*math.Pi*1.2*t)
		drift := 50000 * math.Sin(2*math.Pi*0.05*t)
		samples[i][0] = int32(100000 + drift + pulse)
	}
	return samples
}
