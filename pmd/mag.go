// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"fmt"
	"io"
	"time"
)

const (
	MagSampleFreq50     MagSampleFreq = 50 // Hz
	MagSampleInterval50               = time.Second / time.Duration(MagSampleFreq50)

	MagRange50G MagRange = 50 // G
)

type MagSampleFreq uint16

type MagRange uint16

// MagHandler implements the Handler interface for magnetometer data.
type MagHandler struct {
	// SampleFreq is the sample frequency to use.
	SampleFreq MagSampleFreq
	// Range is the field strength range to use.
	Range MagRange

	// Handler is called for each notification.
	Handler func([]byte)
}

func (h MagHandler) Handle() (Command, MeasureType, []Setting, func([]byte)) {
	if h.Handler == nil {
		return MeasureStop, MagnetometerType, nil, nil
	}
	return MeasureStart, MagnetometerType, []Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{uint16(h.SampleFreq)}}, // Hz
		Uint16{Type: ResolutionSetting, Val: []uint16{16}},                   // bits
		Uint16{Type: RangeUnitSetting, Val: []uint16{uint16(h.Range)}},       // G
		Uint8{Type: ChannelsSetting, Val: []uint8{3}},
	}, h.Handler
}

// Mag is a magnetic field measurement.
type Mag struct {
	Timestamp time.Time
	Samples   []Vec3
}

func (m *Mag) UnmarshalBinary(data []byte) error {
	if len(data) < dataOffset {
		return io.ErrUnexpectedEOF
	}
	if MeasureType(data[sampleTypeOffset]) != MagnetometerType {
		return fmt.Errorf("expected sample type mag: %v", data[sampleTypeOffset])
	}
	samples, err := vec3Samples(data)
	if err != nil {
		return err
	}
	*m = Mag{
		Timestamp: timestamp(data),
		Samples:   samples,
	}
	return nil
}
