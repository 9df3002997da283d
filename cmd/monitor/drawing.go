// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"image/color"
	"image/draw"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
)

var (
	headerBG  = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}
	headerFG  = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	headerDim = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
)

var (
	figureFont = &freesans.Bold18pt7b
	detailFont = &freesans.Regular9pt7b
)

type displayShim struct {
	// ¯\_(ツ)_/¯
	img draw.Image
}

func (d displayShim) SetPixel(x, y int16, c color.RGBA) {
	d.img.Set(int(x), int(y), c)
}

func (d displayShim) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d displayShim) Display() error { return nil }

func writeText(img draw.Image, font *tinyfont.Font, x, y int, text string, c color.RGBA) int {
	tinyfont.WriteLine(displayShim{img}, font, int16(x), int16(y), text, c)
	_, w := tinyfont.LineWidth(font, text)
	return x + int(w)
}

func blank(img draw.Image, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
