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
	AccSampleFreq25      AccSampleFreq = 25 // Hz
	AccSampleInterval25                = time.Second / time.Duration(AccSampleFreq25)
	AccSampleFreq52      AccSampleFreq = 52 // Hz
	AccSampleInterval52                = time.Second / time.Duration(AccSampleFreq52)
	AccSampleFreq100     AccSampleFreq = 100 // Hz
	AccSampleInterval100               = time.Second / time.Duration(AccSampleFreq100)
	AccSampleFreq200     AccSampleFreq = 200 // Hz
	AccSampleInterval200               = time.Second / time.Duration(AccSampleFreq200)

	AccRange2G AccRange = 2 // G
	AccRange4G AccRange = 4 // G
	AccRange8G AccRange = 8 // G
)

type AccSampleFreq uint16

type AccRange uint16

// AccHandler implements the Handler interface for accelerometer data.
type AccHandler struct {
	// SampleFreq is the sample frequency to use.
	SampleFreq AccSampleFreq
	// Range is the acceleration resolution to use.
	Range AccRange

	// Handler is called for each notification.
	Handler func([]byte)
}

func (h AccHandler) Handle() (Command, MeasureType, []Setting, func([]byte)) {
	if h.Handler == nil {
		return MeasureStop, AccType, nil, nil
	}
	return MeasureStart, AccType, []Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{uint16(h.SampleFreq)}}, // Hz
		Uint16{Type: ResolutionSetting, Val: []uint16{16}},                   // bits
		Uint16{Type: RangeUnitSetting, Val: []uint16{uint16(h.Range)}},       // G
		Uint8{Type: ChannelsSetting, Val: []uint8{3}},
	}, h.Handler
}

// Acc is an acceleration measurement. Sample values are in mG.
type Acc struct {
	Timestamp time.Time
	Samples   []Vec3
}

func (m *Acc) UnmarshalBinary(data []byte) error {
	if len(data) < dataOffset {
		return io.ErrUnexpectedEOF
	}
	if MeasureType(data[sampleTypeOffset]) != AccType {
		return fmt.Errorf("expected sample type acc: %v", data[sampleTypeOffset])
	}
	samples, err := vec3Samples(data)
	if err != nil {
		return err
	}
	*m = Acc{
		Timestamp: timestamp(data),
		Samples:   samples,
	}
	return nil
}
