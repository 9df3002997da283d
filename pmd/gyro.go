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
	GyroSampleFreq52      GyroSampleFreq = 52 // Hz
	GyroSampleInterval52                 = time.Second / time.Duration(GyroSampleFreq52)
	GyroSampleFreq208     GyroSampleFreq = 208 // Hz
	GyroSampleInterval208                = time.Second / time.Duration(GyroSampleFreq208)

	GyroRange250  GyroRange = 250 // °/s
	GyroRange500  GyroRange = 500
	GyroRange1000 GyroRange = 1000
	GyroRange2000 GyroRange = 2000
)

type GyroSampleFreq uint16

type GyroRange uint16

// GyroHandler implements the Handler interface for gyroscope data.
type GyroHandler struct {
	// SampleFreq is the sample frequency to use.
	SampleFreq GyroSampleFreq
	// Range is the angular velocity range to use.
	Range GyroRange

	// Handler is called for each notification.
	Handler func([]byte)
}

func (h GyroHandler) Handle() (Command, MeasureType, []Setting, func([]byte)) {
	if h.Handler == nil {
		return MeasureStop, GyroType, nil, nil
	}
	return MeasureStart, GyroType, []Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{uint16(h.SampleFreq)}}, // Hz
		Uint16{Type: ResolutionSetting, Val: []uint16{16}},                   // bits
		Uint16{Type: RangeUnitSetting, Val: []uint16{uint16(h.Range)}},       // °/s
		Uint8{Type: ChannelsSetting, Val: []uint8{3}},
	}, h.Handler
}

// Gyro is an angular velocity measurement. Sample values are in °/s
// scaled to the configured range.
type Gyro struct {
	Timestamp time.Time
	Samples   []Vec3
}

func (m *Gyro) UnmarshalBinary(data []byte) error {
	if len(data) < dataOffset {
		return io.ErrUnexpectedEOF
	}
	if MeasureType(data[sampleTypeOffset]) != GyroType {
		return fmt.Errorf("expected sample type gyro: %v", data[sampleTypeOffset])
	}
	samples, err := vec3Samples(data)
	if err != nil {
		return err
	}
	*m = Gyro{
		Timestamp: timestamp(data),
		Samples:   samples,
	}
	return nil
}
