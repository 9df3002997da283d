// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/verity/battery"
	"github.com/kortschak/verity/chart"
	"github.com/kortschak/verity/heart"
	"github.com/kortschak/verity/pmd"
)

// Card geometry. Chart widths follow the window width; heights are
// fixed per channel.
const (
	initialWidth  = 640
	headerHeight  = 48
	ppgHeight     = 150
	motionHeight  = 110
	historyHeight = 100
	pulseHeight   = 130

	framePeriod = 33 * time.Millisecond
)

type monitor struct {
	heart  *heart.RateListener
	pmd    *pmd.Listener
	cancel context.CancelFunc
}

func newMonitor(ctx context.Context, dev bluetooth.Device, update chan image.Image, width chan int) (*monitor, error) {
	l, err := pmd.NewListener(&dev)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %v", err)
	}
	fmt.Printf("supported features: %s\n", l.Features())

	ppgCh := make(chan pmd.PPG, 4)
	accCh := make(chan pmd.Acc, 4)
	gyroCh := make(chan pmd.Gyro, 4)
	magCh := make(chan pmd.Mag, 4)
	hrCh := make(chan heart.Rate, 1)
	battCh := make(chan int, 1)

	for _, h := range []pmd.Handler{
		pmd.PPGHandler(decodeTo[*pmd.PPG](ppgCh)),
		pmd.AccHandler{
			SampleFreq: pmd.AccSampleFreq52,
			Range:      pmd.AccRange8G,
			Handler:    decodeTo[*pmd.Acc](accCh),
		},
		pmd.GyroHandler{
			SampleFreq: pmd.GyroSampleFreq52,
			Range:      pmd.GyroRange2000,
			Handler:    decodeTo[*pmd.Gyro](gyroCh),
		},
		pmd.MagHandler{
			SampleFreq: pmd.MagSampleFreq50,
			Range:      pmd.MagRange50G,
			Handler:    decodeTo[*pmd.Mag](magCh),
		},
	} {
		timeout, cancelTimeout := context.WithTimeout(ctx, time.Second)
		_, err = l.SetHandler(timeout, h)
		cancelTimeout()
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("error occurred starting streaming from sensor: %v", err)
		}
	}

	hr, err := heart.NewRateListener(&dev, func(r heart.Rate, err error) {
		if err != nil {
			log.Printf("failed to get hr measurement: %v", err)
			return
		}
		select {
		case hrCh <- r:
		default:
		}
	})
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to start streaming hr: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	go battery.Watch(ctx, &dev, time.Minute, func(level int, err error) {
		if err != nil {
			log.Printf("failed to read battery level: %v", err)
			return
		}
		select {
		case battCh <- level:
		default:
		}
	})

	go run(ctx, streams{
		ppg:  ppgCh,
		acc:  accCh,
		gyro: gyroCh,
		mag:  magCh,
		hr:   hrCh,
		batt: battCh,
	}, update, width)

	return &monitor{
		pmd:    l,
		heart:  hr,
		cancel: cancel,
	}, nil
}

func (m *monitor) Close() error {
	err := errors.Join(m.pmd.Close(), m.heart.Close())
	m.cancel()
	return err
}

// decodeTo returns a notification handler that unmarshals frames into
// E and forwards them to ch, dropping frames when the render loop is
// behind.
func decodeTo[M interface {
	*E
	UnmarshalBinary([]byte) error
}, E any](ch chan E) func([]byte) {
	return func(buf []byte) {
		var m E
		err := M(&m).UnmarshalBinary(buf)
		if err != nil {
			log.Printf("failed to get measurement: %v", err)
			return
		}
		select {
		case ch <- m:
		default:
		}
	}
}

type streams struct {
	ppg  chan pmd.PPG
	acc  chan pmd.Acc
	gyro chan pmd.Gyro
	mag  chan pmd.Mag
	hr   chan heart.Rate
	batt chan int
}

// header holds the numeric figures drawn above the charts.
type header struct {
	hr      int
	rr      time.Duration
	pulse   float64 // rate estimated from the PPG stream
	battery int
}

// run is the render loop. All chart state is owned by this goroutine;
// sensor callbacks and the window loop communicate with it only over
// channels, so the renderers themselves need no locking.
func run(ctx context.Context, in streams, update chan image.Image, width chan int) {
	w := initialWidth
	var resize chart.Notifier

	ppg := chart.NewPPG(&resize, w, ppgHeight, func(s pmd.PPGSample) []float64 {
		return []float64{float64(s[0]), float64(s[1]), float64(s[2]), float64(s[3])}
	})
	acc := chart.NewAcc(&resize, w, motionHeight, vec3Fields)
	gyro := chart.NewGyro(&resize, w, motionHeight, vec3Fields)
	rate := chart.NewRateHistory(&resize, w, historyHeight)
	motion := chart.NewMotionHistory(&resize, w, historyHeight)
	pulse := chart.NewPulseWindow(&resize, w, pulseHeight)
	defer func() {
		ppg.Close()
		acc.Close()
		gyro.Close()
		rate.Close()
		motion.Close()
		pulse.Close()
	}()

	proc := newPulseProcessor(pmd.PPGSampleFreq)
	var hdr header
	var card *image.RGBA

	tick := time.NewTicker(framePeriod)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case m := <-in.ppg:
			ppg.UpdateData(m.Samples)
			if vals, beats, bpm, ok := proc.process(m.Samples, time.Now()); ok {
				pulse.UpdateData(vals, beats)
				hdr.pulse = bpm
			}
		case m := <-in.acc:
			acc.UpdateData(m.Samples)
			if len(m.Samples) != 0 {
				motion.Add(0, m.Samples[len(m.Samples)-1].Magnitude())
			}
		case m := <-in.gyro:
			gyro.UpdateData(m.Samples)
			if len(m.Samples) != 0 {
				motion.Add(1, m.Samples[len(m.Samples)-1].Magnitude())
			}
		case m := <-in.mag:
			if len(m.Samples) != 0 {
				motion.Add(2, m.Samples[len(m.Samples)-1].Magnitude())
			}
		case r := <-in.hr:
			hdr.hr = int(r.HR)
			if rr := r.MeanRR(); rr != 0 {
				hdr.rr = rr
			}
			rate.Add(0, float64(r.HR))
		case lvl := <-in.batt:
			hdr.battery = lvl

		case newW := <-width:
			if newW > 0 && newW != w {
				w = newW
				resize.Publish(w)
				card = nil
			}

		case now := <-tick.C:
			ppg.Frame(now)
			acc.Frame(now)
			gyro.Frame(now)
			rate.Frame(now)
			motion.Frame(now)
			card = compose(card, w, hdr,
				ppg.Image(), acc.Image(), gyro.Image(),
				rate.Image(), motion.Image(), pulse.Image())
			select {
			case update <- card:
			default:
			}
		}
	}
}

func vec3Fields(v pmd.Vec3) []float64 {
	return []float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// compose stacks the header and chart surfaces onto the card, reusing
// the previous card allocation when geometry is unchanged.
func compose(card *image.RGBA, width int, hdr header, charts ...image.Image) *image.RGBA {
	h := headerHeight
	for _, c := range charts {
		h += c.Bounds().Dy()
	}
	if card == nil || card.Bounds().Dx() != width || card.Bounds().Dy() != h {
		card = image.NewRGBA(image.Rect(0, 0, width, h))
	}

	blank(card.SubImage(image.Rect(0, 0, width, headerHeight)).(*image.RGBA), headerBG)
	base := int(figureFont.YAdvance)
	x := writeText(card, figureFont, 8, base, fmt.Sprintf("%d", hdr.hr), headerFG)
	x = writeText(card, detailFont, x+4, base, "bpm", headerDim)
	rr := "-"
	if hdr.rr != 0 {
		rr = hdr.rr.Round(time.Millisecond).String()
	}
	x = writeText(card, detailFont, x+24, base, "rr "+rr, headerFG)
	if hdr.pulse != 0 {
		x = writeText(card, detailFont, x+24, base, fmt.Sprintf("ppg %.1f bpm", hdr.pulse), headerFG)
	}
	writeText(card, detailFont, x+24, base, fmt.Sprintf("batt %d%%", hdr.battery), headerDim)

	y := headerHeight
	for _, c := range charts {
		b := c.Bounds()
		draw.Draw(card, image.Rect(0, y, width, y+b.Dy()), c, b.Min, draw.Src)
		y += b.Dy()
	}
	return card
}
