package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"soundspace/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ledSendCount uint64

// LaunchpadController handles a Novation Launchpad X
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()

	closeOnce sync.Once
	padChan   chan PadEvent
	noteChan  chan NoteEvent
}

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:       id,
		inPort:   inPort,
		outPort:  outPort,
		padChan:  make(chan PadEvent, 64),
		noteChan: make(chan NoteEvent, 1),
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))

		// Brightness to maximum: F0 00 20 29 02 0C 08 <brightness> F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))

		// External LED feedback: F0 00 20 29 02 0C 0A 01 01 F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if ev, ok := parsePad(msg); ok {
				send(lp.padChan, ev)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan // never sends; pads come through PadEvents
}

// SetLEDBatch sends multiple LED updates using individual NoteOn messages
// (SysEx batching had color issues - this is simpler and still benefits from
// the caller batching logic which reduces redundant updates)
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return fmt.Errorf("led %d,%d: %w", u.Row, u.Col, err)
		}
	}

	atomic.AddUint64(&ledSendCount, uint64(len(updates)))

	count := atomic.LoadUint64(&ledSendCount)
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}

	return nil
}

// launchpadPalette approximates the Launchpad X velocity palette.
var launchpadPalette = []struct {
	velocity uint8
	color    colorful.Color
}{
	{0, rgb(0, 0, 0)},         // off
	{5, rgb(255, 0, 0)},       // red
	{6, rgb(255, 80, 80)},     // bright red
	{7, rgb(180, 60, 60)},     // dim red
	{9, rgb(255, 100, 0)},     // orange
	{11, rgb(180, 80, 40)},    // dim orange
	{13, rgb(255, 200, 0)},    // yellow
	{17, rgb(0, 180, 0)},      // green
	{19, rgb(0, 100, 0)},      // dim green
	{21, rgb(0, 255, 0)},      // bright green
	{37, rgb(0, 200, 200)},    // cyan
	{43, rgb(40, 60, 120)},    // dim blue
	{45, rgb(0, 100, 255)},    // blue
	{47, rgb(80, 150, 255)},   // bright blue
	{49, rgb(150, 0, 200)},    // purple
	{53, rgb(255, 80, 180)},   // pink
	{78, rgb(100, 100, 255)},  // light blue
	{84, rgb(255, 150, 50)},   // bright orange
	{87, rgb(150, 255, 100)},  // lime
	{97, rgb(180, 180, 60)},   // dim yellow
	{119, rgb(255, 255, 255)}, // white
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// mapRGBToLaunchpad finds the perceptually nearest palette entry.
func mapRGBToLaunchpad(c [3]uint8) uint8 {
	want := rgb(c[0], c[1], c[2])
	best, bestDist := uint8(0), 1e9
	for _, p := range launchpadPalette {
		if d := want.DistanceLab(p.color); d < bestDist {
			best, bestDist = p.velocity, d
		}
	}
	return best
}

func (lp *LaunchpadController) Close() error {
	lp.closeOnce.Do(func() {
		// Clear all LEDs on close via batch
		if lp.send != nil {
			var updates []LEDUpdate
			for row := 0; row < 9; row++ {
				for col := 0; col < 9; col++ {
					if row == 8 && col == 8 {
						continue // no LED at 8,8
					}
					updates = append(updates, LEDUpdate{Row: row, Col: col})
				}
			}
			lp.SetLEDBatch(updates)
		}
		if lp.stopFunc != nil {
			lp.stopFunc()
		}
		close(lp.padChan)
		close(lp.noteChan)
	})
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98 (handled via CC messages)

func rowColToNote(row, col int) uint8 {
	// Top row uses CC, but for LED control we use notes 91-98
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	// Top row notes (91-98)
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	// Accept 8x8 grid (rows 0-7, cols 0-7) plus side column (col 8)
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

// ccToRowCol converts CC messages to row/col (for top row buttons)
func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
