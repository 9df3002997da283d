// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import "image/color"

// Trace palette for the Verity Sense channels.
var (
	ppgColors = []color.RGBA{
		{R: 0x4a, G: 0xdf, B: 0x6a, A: 0xff},
		{R: 0x44, G: 0xc8, B: 0xe8, A: 0xff},
		{R: 0xff, G: 0xdd, B: 0x66, A: 0xff},
		{R: 0xe8, G: 0x6a, B: 0xd0, A: 0xff},
	}
	axisColors = []color.RGBA{
		{R: 0xe8, G: 0x4a, B: 0x4a, A: 0xff},
		{R: 0x4a, G: 0xdf, B: 0x6a, A: 0xff},
		{R: 0x5a, G: 0x8a, B: 0xff, A: 0xff},
	}
	rateColor   = color.RGBA{R: 0xe8, G: 0x4a, B: 0x4a, A: 0xff}
	pulseColor  = color.RGBA{R: 0x4a, G: 0xdf, B: 0x6a, A: 0xff}
	beatColor   = color.RGBA{R: 0xe8, G: 0x4a, B: 0x4a, A: 0xff}
	accMagColor = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	gyrMagColor = color.RGBA{R: 0xff, G: 0xa0, B: 0x4a, A: 0xff}
	magMagColor = color.RGBA{R: 0x9a, G: 0x6a, B: 0xe8, A: 0xff}
)

// NewPPG returns a sweep chart tuned for raw PPG data: four channels
// over the 24-bit signed sample range at 55 Hz.
func NewPPG[T any](resize *Notifier, width, height int, extract func(T) []float64) *Sweep[T] {
	return NewSweep(Config{
		Width: width, Height: height,
		Min: -1 << 23, Max: 1 << 23,
		Rate:    55,
		Unit:    "ppg",
		Colors:  ppgColors,
		Advance: 2,
		Erase:   24,
		Resize:  resize,
	}, extract, nil)
}

// NewAcc returns a sweep chart tuned for accelerometer data: three
// axes over ±1500 mG at 52 Hz.
func NewAcc[T any](resize *Notifier, width, height int, extract func(T) []float64) *Sweep[T] {
	return NewSweep(Config{
		Width: width, Height: height,
		Min: -1500, Max: 1500,
		Rate:    52,
		Unit:    "mG",
		Colors:  axisColors,
		Advance: 2,
		Erase:   24,
		Resize:  resize,
	}, extract, nil)
}

// NewGyro returns a sweep chart tuned for gyroscope data: three axes
// over ±500 °/s at 52 Hz.
func NewGyro[T any](resize *Notifier, width, height int, extract func(T) []float64) *Sweep[T] {
	return NewSweep(Config{
		Width: width, Height: height,
		Min: -500, Max: 500,
		Rate:    52,
		Unit:    "°/s",
		Colors:  axisColors,
		Advance: 2,
		Erase:   24,
		Resize:  resize,
	}, extract, nil)
}

// NewRateHistory returns a history chart holding five minutes of
// heart rate at one sample per second, drawn with a filled area.
func NewRateHistory(resize *Notifier, width, height int) *History {
	return NewHistory(width, height, 300, resize,
		Series{Name: "bpm", Max: 200, Color: rateColor, Fill: true})
}

// NewMotionHistory returns a history chart plotting the acceleration,
// rotation and field magnitudes on one surface with per-series
// scales.
func NewMotionHistory(resize *Notifier, width, height int) *History {
	return NewHistory(width, height, 200, resize,
		Series{Name: "acc", Max: 2000, Color: accMagColor},
		Series{Name: "gyro", Max: 1000, Color: gyrMagColor},
		Series{Name: "mag", Max: 120, Color: magMagColor})
}

// NewPulseWindow returns a window chart for one normalized filtered
// PPG window with detected beats marked.
func NewPulseWindow(resize *Notifier, width, height int) *Window {
	return NewWindow(Config{
		Width: width, Height: height,
		Min: -4, Max: 4,
		Rate:   55,
		Unit:   "σ",
		Colors: []color.RGBA{pulseColor, beatColor},
		Resize: resize,
	})
}
