// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"image"
	"image/color"
	"image/draw"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
)

// Surface palette.
var (
	colorBG   = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	colorGrid = color.RGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff}
	colorText = color.RGBA{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff}
)

var labelFont = &freesans.Regular9pt7b

func line(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	switch {
	case x0 == x1:
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		for ; y0 <= y1; y0++ {
			img.Set(x0, y0, c)
		}
	case y0 == y1:
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		for ; x0 <= x1; x0++ {
			img.Set(x0, y0, c)
		}
	default:
		bresenham(img, x0, y0, x1, y1, c)
	}
}

func bresenham(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	dx, sx := absSign(x1 - x0)
	dy, sy := absSign(y1 - y0)
	dy = -dy
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			err += dx
			y0 += sy
		}
	}
}

func absSign(a int) (abs, sign int) {
	if a < 0 {
		return -a, -1
	}
	return a, 1
}

func fill(img draw.Image, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// clearRect makes the given span of a layer fully transparent.
func clearRect(img draw.Image, r image.Rectangle) {
	draw.Draw(img, r, image.Transparent, image.Point{}, draw.Src)
}

func fillCircle(img draw.Image, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// displayShim adapts a draw.Image to the displayer interface
// expected by tinyfont.
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

func label(img draw.Image, x, y int, text string, c color.RGBA) {
	tinyfont.WriteLine(displayShim{img}, labelFont, int16(x), int16(y), text, c)
}

func labelWidth(text string) int {
	_, w := tinyfont.LineWidth(labelFont, text)
	return int(w)
}
