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
	PPGSampleFreq     = 55 // Hz
	PPGSampleInterval = time.Second / PPGSampleFreq

	PPGResolution = 22 // bits
	PPGChannels   = 4
)

// PPGHandler implements the Handler interface for PPG data.
// The function is called for each notification.
type PPGHandler func([]byte)

func (h PPGHandler) Handle() (Command, MeasureType, []Setting, func([]byte)) {
	if h == nil {
		return MeasureStop, PPGType, nil, nil
	}
	return MeasureStart, PPGType, []Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{PPGSampleFreq}},
		Uint16{Type: ResolutionSetting, Val: []uint16{PPGResolution}},
		Uint8{Type: ChannelsSetting, Val: []uint8{PPGChannels}},
	}, h
}

// PPGSample holds the four photodiode channel values of one PPG
// timestep. The 22-bit values are carried sign-extended in 3 bytes
// on the wire.
type PPGSample [PPGChannels]int32

// PPG is a PPG measurement.
type PPG struct {
	Timestamp time.Time
	Samples   []PPGSample
}

func (m *PPG) UnmarshalBinary(data []byte) error {
	if len(data) < dataOffset {
		return io.ErrUnexpectedEOF
	}
	if MeasureType(data[sampleTypeOffset]) != PPGType {
		return fmt.Errorf("expected sample type ppg: %v", data[sampleTypeOffset])
	}
	if FrameType(data[frameTypeOffset]) != PPGFrameType0 {
		return fmt.Errorf("expected frame type ppg0: %v", data[frameTypeOffset])
	}

	payload := data[dataOffset:]
	const stride = PPGChannels * int24Size
	if len(payload)%stride != 0 {
		return fmt.Errorf("payload not a factor of sample stride %d: %d", stride, len(payload)%stride)
	}

	samples := make([]PPGSample, 0, len(payload)/stride)
	for i := 0; i < len(payload); i += stride {
		var s PPGSample
		for ch := range s {
			s[ch] = leInt24(payload[i+ch*int24Size:])
		}
		samples = append(samples, s)
	}

	*m = PPG{
		Timestamp: timestamp(data),
		Samples:   samples,
	}
	return nil
}
