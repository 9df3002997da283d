// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The monitor command renders live telemetry from a Polar Verity
// Sense: raw PPG, accelerometer and gyroscope sweeps, heart rate and
// motion magnitude histories, and the processed pulse trace with
// detected beats.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"tinygo.org/x/bluetooth"
)

func main() {
	adapter := bluetooth.DefaultAdapter
	err := adapter.Enable()
	if err != nil {
		fmt.Printf("failed to enable bluetooth: %v", err)
		os.Exit(1)
	}

	name := flag.String("name", "Polar Sense", "sensor advertised name substring")
	addr := flag.String("addr", "", "sensor bluetooth address (overrides -name)")
	flag.Parse()
	var macAddr bluetooth.Address
	if *addr != "" {
		err = macAddr.UnmarshalText([]byte(*addr))
		if err != nil {
			flag.Usage()
			os.Exit(2)
		}
	}

	fmt.Println("scanning...")
	var dev bluetooth.Device
	err = adapter.Scan(func(adapter *bluetooth.Adapter, found bluetooth.ScanResult) {
		if !slices.ContainsFunc(found.ManufacturerData(), func(m bluetooth.ManufacturerDataElement) bool {
			const polarElectroOY = 0x6b // https://bitbucket.org/bluetooth-SIG/public/src/05be78f4ef6461cce0370663adf778613a1754eb/assigned_numbers/company_identifiers/company_identifiers.yaml#lines-11148:11149
			return m.CompanyID == polarElectroOY
		}) {
			return
		}
		switch {
		case *addr != "":
			if found.Address != macAddr {
				return
			}
		default:
			if !strings.Contains(found.LocalName(), *name) {
				return
			}
		}
		fmt.Printf(`
found device:
  mac: %s rss: %d
  name: %q
  manufacturer data: %v
`,
			found.Address, found.RSSI,
			found.LocalName(),
			manData(found.ManufacturerData()),
		)
		dev, err = adapter.Connect(found.Address, bluetooth.ConnectionParams{})
		if err != nil {
			fmt.Printf("failed to connect: %v", err)
			return
		}
		adapter.StopScan()
	})
	defer dev.Disconnect()

	update := make(chan image.Image)
	width := make(chan int, 1)
	m, err := newMonitor(context.Background(), dev, update, width)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		m.Close()
		os.Exit(0)
	}()

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Verity Sense"), app.Size(initialWidth, 700))
		if err := loop(w, update, width); err != nil {
			log.Fatal(err)
		}
		m.Close()
		os.Exit(0)
	}()
	app.Main()
}

func manData(m []bluetooth.ManufacturerDataElement) []string {
	s := make([]string, len(m))
	for i, d := range m {
		s[i] = fmt.Sprintf("%#x", d.Data)
	}
	return s
}

func loop(w *app.Window, update chan image.Image, width chan int) error {
	expl := explorer.NewExplorer(w)
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	events := make(chan event.Event)
	ack := make(chan struct{})

	go func() {
		for {
			ev := w.Event()
			events <- ev
			<-ack
			if _, ok := ev.(app.DestroyEvent); ok {
				return
			}
		}
	}()
	var img image.Image
	var snap widget.Clickable
	lastWidth := initialWidth
	var ops op.Ops
	for {
		select {
		case img = <-update:
			w.Invalidate()
		case e := <-events:
			expl.ListenEvents(e)
			switch e := e.(type) {
			case app.DestroyEvent:
				ack <- struct{}{}
				return e.Err
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				if dx := gtx.Constraints.Max.X; dx != lastWidth {
					lastWidth = dx
					select {
					case width <- dx:
					default:
					}
				}
				if snap.Clicked(gtx) && img != nil {
					go saveSnapshot(expl, img)
				}
				layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(material.Button(th, &snap, "save snapshot").Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						if img == nil {
							return layout.Dimensions{}
						}
						return widget.Image{
							Src: paint.NewImageOp(img),
							Fit: widget.Contain,
						}.Layout(gtx)
					}),
				)
				e.Frame(gtx.Ops)
			}
			ack <- struct{}{}
		}
	}
}

func saveSnapshot(expl *explorer.Explorer, img image.Image) {
	f, err := expl.CreateFile("telemetry.png")
	if err != nil {
		log.Printf("failed to create snapshot file: %v", err)
		return
	}
	defer f.Close()
	err = png.Encode(f, img)
	if err != nil {
		log.Printf("failed to write snapshot: %v", err)
	}
}
