// Command miditest checks MIDI controllers outside the instrument: it
// lists ports, prints pad and note events, and lights the Launchpad grid.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/pflag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"soundspace/midi"
)

func main() {
	timeout := pflag.DurationP("timeout", "t", 3*time.Second, "how long to wait for the MIDI driver")
	pflag.Usage = usage
	pflag.Parse()

	switch pflag.Arg(0) {
	case "list":
		listPorts(*timeout)
	case "watch":
		watch()
	case "leds":
		testLEDs()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List all MIDI ports")
	fmt.Println("  watch   - Print controller connects, pads and notes")
	fmt.Println("  leds    - Light the Launchpad with a hue sweep")
	fmt.Println("")
	pflag.PrintDefaults()
}

func listPorts(timeout time.Duration) {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Printf("(waiting up to %s...)\n", timeout)

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(timeout):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

// watch runs the same hot-plug manager the instrument uses.
func watch() {
	fmt.Println("Watching for controllers. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager()
	go dm.Run(ctx)

	for ev := range dm.Events() {
		ts := time.Now().Format("15:04:05")
		if ev.Type == midi.DeviceDisconnected {
			fmt.Printf("[%s] disconnected %s\n", ts, ev.ID)
			continue
		}
		c := ev.Controller
		fmt.Printf("[%s] connected %s (%s)\n", ts, c.ID(), c.Type())
		switch c.Type() {
		case midi.ControllerLaunchpad:
			go func() {
				for pad := range c.PadEvents() {
					fmt.Printf("  pad row=%d col=%d vel=%d pressed=%v\n", pad.Row, pad.Col, pad.Velocity, pad.Pressed)
				}
			}()
		case midi.ControllerKeyboard:
			go func() {
				for n := range c.NoteEvents() {
					fmt.Printf("  note %d vel=%d ch=%d on=%v\n", n.Note, n.Velocity, n.Channel, n.On)
				}
			}()
		}
	}
}

func testLEDs() {
	fmt.Println("Testing LED control...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dm := midi.NewDeviceManager()
	go dm.Run(ctx)

	var lp midi.Controller
	deadline := time.After(5 * time.Second)
	for lp == nil {
		select {
		case ev := <-dm.Events():
			if ev.Type == midi.DeviceConnected && ev.Controller.Type() == midi.ControllerLaunchpad {
				lp = ev.Controller
			}
		case <-deadline:
			fmt.Println("No Launchpad found")
			return
		}
	}
	fmt.Printf("Using %s\n", lp.ID())

	var leds []midi.LEDUpdate
	for row := 0; row < midi.GridSize; row++ {
		for col := 0; col < midi.GridSize; col++ {
			c := colorful.Hsl(float64(col)/midi.GridSize*360, 1, 0.1+0.05*float64(row))
			r, g, b := c.Clamped().RGB255()
			leds = append(leds, midi.LEDUpdate{Row: row, Col: col, Color: [3]uint8{r, g, b}})
		}
	}
	if err := lp.SetLEDBatch(leds); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	// Close clears the grid
	if err := lp.Close(); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	fmt.Println("Done!")
}
