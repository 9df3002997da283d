// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Vec3 is one three-axis sample.
type Vec3 struct {
	X, Y, Z int32
}

// Magnitude returns the Euclidean magnitude of the sample.
func (v Vec3) Magnitude() float64 {
	x := float64(v.X)
	y := float64(v.Y)
	z := float64(v.Z)
	return math.Sqrt(x*x + y*y + z*z)
}

// timestamp returns the measurement time of a PMD data frame.
func timestamp(data []byte) time.Time {
	ts := binary.LittleEndian.Uint64(data[timeStampOffset:])
	return time.Unix(int64(ts)/1e9+epoch, int64(ts)%1e9)
}

// vec3Samples decodes the three-axis sample payload of a PMD data
// frame. The frame type selects the per-axis value width: frame type
// 0 is 8-bit, 1 is 16-bit and 2 is 24-bit, all signed little-endian.
func vec3Samples(data []byte) ([]Vec3, error) {
	if len(data) < dataOffset {
		return nil, io.ErrUnexpectedEOF
	}
	var step int
	switch FrameType(data[frameTypeOffset]) {
	case 0:
		step = uint8Size
	case 1:
		step = uint16Size
	case 2:
		step = int24Size
	default:
		return nil, fmt.Errorf("expected frame type 0/1/2: %v", data[frameTypeOffset])
	}
	payload := data[dataOffset:]
	stride := 3 * step
	if len(payload)%stride != 0 {
		return nil, fmt.Errorf("payload not a factor of sample stride %d: %d", stride, len(payload)%stride)
	}
	samples := make([]Vec3, 0, len(payload)/stride)
	for i := 0; i < len(payload); i += stride {
		var v [3]int32
		for a := range v {
			b := payload[i+a*step:]
			switch step {
			case uint8Size:
				v[a] = int32(int8(b[0]))
			case uint16Size:
				v[a] = int32(int16(binary.LittleEndian.Uint16(b)))
			case int24Size:
				v[a] = leInt24(b)
			}
		}
		samples = append(samples, Vec3{X: v[0], Y: v[1], Z: v[2]})
	}
	return samples, nil
}
