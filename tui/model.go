// Package tui is the terminal front end: the canvas is played with the
// mouse, the home row plays notes and the other keys drive the controls.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"soundspace/debug"
	"soundspace/instrument"
	"soundspace/midi"
	"soundspace/theme"
	"soundspace/widgets"
)

const (
	frameRate  = time.Second / 30
	// how long an error or notice stays on screen
	noticeTime = 4 * time.Second

	headerHeight = 1
	footerHeight = 2
	padsWidth    = 19
)

type Model struct {
	Inst      *instrument.Instrument
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	keys     keyMap
	help     help.Model
	width    int
	height   int
	showPads bool
	dragging bool
	quitting bool

	notice    string
	noticeErr bool
	noticeSeq int
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type tickMsg time.Time

type clearNoticeMsg int

func NewModel(inst *instrument.Instrument, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.Accent())
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(th.Muted())
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc
	return Model{
		Inst:      inst,
		DeviceMgr: deviceMgr,
		Theme:     th,
		keys:      defaultKeys(),
		help:      h,
		width:     80,
		height:    24,
	}
}

func ListenForUpdates(inst *instrument.Instrument) tea.Cmd {
	return func() tea.Msg {
		<-inst.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Inst), tick()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		w, h := m.canvasSize()
		m.Inst.Resize(w, h)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.Inst.Welcome() {
			m.Inst.DismissWelcome()
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		return m, tick()

	case UpdateMsg:
		return m, ListenForUpdates(m.Inst)

	case clearNoticeMsg:
		if int(msg) == m.noticeSeq {
			m.notice = ""
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			if m.Inst.Attach(event.Controller) {
				return m.say(false, "Connected "+event.ID), ListenForDevices(m.DeviceMgr)
			}
		case midi.DeviceDisconnected:
			m.Inst.Detach(event.ID)
			return m.say(false, "Disconnected "+event.ID), ListenForDevices(m.DeviceMgr)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Waveform):
		m.Inst.CycleWaveform()
	case key.Matches(msg, k.VolumeDown):
		m.Inst.AdjustVolume(-instrument.VolumeStep)
	case key.Matches(msg, k.VolumeUp):
		m.Inst.AdjustVolume(instrument.VolumeStep)
	case key.Matches(msg, k.DelayDown):
		m.Inst.AdjustDelay(-instrument.DelayStep)
	case key.Matches(msg, k.DelayUp):
		m.Inst.AdjustDelay(instrument.DelayStep)
	case key.Matches(msg, k.ReverbDown):
		m.Inst.AdjustReverb(-instrument.ReverbStep)
	case key.Matches(msg, k.ReverbUp):
		m.Inst.AdjustReverb(instrument.ReverbStep)

	case key.Matches(msg, k.OctaveDown):
		m.Inst.ShiftOctave(-1)
	case key.Matches(msg, k.OctaveUp):
		m.Inst.ShiftOctave(1)
	case key.Matches(msg, k.Scale):
		m.Inst.CycleScale()
	case key.Matches(msg, k.Root):
		m.Inst.CycleKey()

	case key.Matches(msg, k.Pattern):
		m.Inst.CyclePattern()
	case key.Matches(msg, k.Play):
		return m.report(m.Inst.TogglePattern())
	case key.Matches(msg, k.TempoUp):
		m.Inst.AdjustTempo(instrument.TempoStep)
	case key.Matches(msg, k.TempoDown):
		m.Inst.AdjustTempo(-instrument.TempoStep)

	case key.Matches(msg, k.Record):
		return m.report(m.Inst.ToggleRecording())
	case key.Matches(msg, k.Listen):
		if m.Inst.TakePlaying() {
			m.Inst.StopTake()
			return m, nil
		}
		return m.report(m.Inst.PlayTake())
	case key.Matches(msg, k.Save):
		path, err := m.Inst.SaveTake()
		if err != nil {
			return m.report(err)
		}
		m = m.say(false, "Saved "+path)
		return m, m.clearLater()
	case key.Matches(msg, k.Discard):
		m.Inst.DiscardTake()

	case key.Matches(msg, k.Pads):
		m.showPads = !m.showPads
		w, h := m.canvasSize()
		m.Inst.Resize(w, h)
	case key.Matches(msg, k.Intro):
		m.Inst.ShowWelcome()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		w, h := m.canvasSize()
		m.Inst.Resize(w, h)

	default:
		m.Inst.Key(msg.String())
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.Inst.Welcome() {
		if msg.Action == tea.MouseActionPress {
			m.Inst.DismissWelcome()
		}
		return m, nil
	}

	// cell centres
	x := float64(msg.X) + 0.5
	y := float64(msg.Y-headerHeight) + 0.5
	w, h := m.canvasSize()
	inside := msg.X < w && msg.Y >= headerHeight && msg.Y < headerHeight+h

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			break
		}
		// a press while dragging means the release was lost
		if m.dragging {
			m.Inst.Drag(x, y)
			break
		}
		m.dragging = true
		m.Inst.Press(x, y)
	case tea.MouseActionMotion:
		if m.dragging {
			m.Inst.Drag(min(x, float64(w)), min(max(y, 0), float64(h)))
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			m.Inst.Lift()
		}
	}
	return m, nil
}

// report shows err, preferring the message meant for the user.
func (m Model) report(err error) (tea.Model, tea.Cmd) {
	if err == nil {
		return m, nil
	}
	debug.Log("tui", "%v", err)
	text := fmsg.GetIssue(err)
	if text == "" {
		text = err.Error()
	}
	m = m.say(true, text)
	return m, m.clearLater()
}

func (m Model) say(isErr bool, text string) Model {
	m.noticeSeq++
	m.notice = text
	m.noticeErr = isErr
	return m
}

func (m Model) clearLater() tea.Cmd {
	seq := m.noticeSeq
	return tea.Tick(noticeTime, func(time.Time) tea.Msg {
		return clearNoticeMsg(seq)
	})
}

// canvasSize is the playing surface left after the header, footer, help
// and pad mirror.
func (m Model) canvasSize() (int, int) {
	w := m.width
	if m.showPads {
		w -= padsWidth + 1
	}
	h := m.height - headerHeight - footerHeight
	if m.help.ShowAll {
		h -= lipgloss.Height(m.help.View(m.keys)) - 1
	}
	return max(w, 1), max(h, 1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.Inst.Welcome() {
		return m.welcomeView()
	}

	s := m.Inst.Status()
	th := m.Theme
	sep := lipgloss.NewStyle().Foreground(th.Muted()).Render(th.Symbols.Separator)

	w, h := m.canvasSize()
	body := m.Inst.Canvas(w, h, th.Background())
	if m.showPads {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.padsView())
	}

	var out strings.Builder
	out.WriteString(m.header(s, sep))
	out.WriteString("\n")
	out.WriteString(body)
	out.WriteString("\n")
	out.WriteString(m.statusLine(s, sep))
	out.WriteString("\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func (m Model) header(s instrument.Status, sep string) string {
	th := m.Theme
	accent := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	fg := lipgloss.NewStyle().Foreground(th.FG())

	parts := []string{
		accent.Render("soundspace"),
		fg.Render(s.Scale),
		fg.Render(s.Waveform.String()),
		fg.Render(fmt.Sprintf("vol %d%%", int(s.Volume*100+0.5))),
		fg.Render(fmt.Sprintf("delay %.2fs", s.Delay)),
		fg.Render(fmt.Sprintf("reverb %d%%", int(s.Reverb*100+0.5))),
	}

	transport := fmt.Sprintf("%c %s %dbpm", th.Symbols.Stop, s.Pattern, s.Tempo)
	if s.Playing {
		transport = lipgloss.NewStyle().Foreground(th.Success()).
			Render(fmt.Sprintf("%c %s %dbpm", th.Symbols.Play, s.Pattern, s.Tempo))
	} else {
		transport = fg.Render(transport)
	}
	parts = append(parts, transport)

	switch {
	case s.Recording:
		parts = append(parts, lipgloss.NewStyle().Foreground(th.Warning()).
			Render(fmt.Sprintf("%c REC %s", th.Symbols.Record, s.RecordingClock())))
	case s.HasTake:
		parts = append(parts, fg.Render(fmt.Sprintf("%c take %.1fs", th.Symbols.Take, s.TakeLength.Seconds())))
	}
	return truncate(strings.Join(parts, sep), m.width)
}

func (m Model) statusLine(s instrument.Status, sep string) string {
	th := m.Theme
	fg := lipgloss.NewStyle().Foreground(th.FG())
	muted := lipgloss.NewStyle().Foreground(th.Muted())

	note := "-"
	if s.Note != "" {
		note = s.Note
	}
	parts := []string{
		lipgloss.NewStyle().Foreground(th.Active()).Bold(true).Render(fmt.Sprintf("%-3s", note)),
		fg.Render(s.Coordinates()),
		muted.Render(fmt.Sprintf("voices %d", s.Voices)),
	}
	if !s.Audio {
		parts = append(parts, lipgloss.NewStyle().Foreground(th.Warning()).Render("no audio"))
	}
	if s.Controller != "" {
		parts = append(parts, muted.Render(s.Controller))
	}
	if m.notice != "" {
		style := fg
		if m.noticeErr {
			style = lipgloss.NewStyle().Foreground(th.Warning())
		}
		parts = append(parts, style.Render(m.notice))
	}
	return truncate(strings.Join(parts, sep), m.width)
}

func (m Model) padsView() string {
	var g widgets.PadGrid
	for _, led := range m.Inst.RenderLEDs() {
		g.Set(led.Row, led.Col, led.Color)
	}
	sym := m.Theme.Symbols
	return widgets.RenderPadGrid(&g, sym.Solid, sym.Empty)
}

func (m Model) welcomeView() string {
	th := m.Theme
	title := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true).Render("soundspace")
	intro := lipgloss.NewStyle().Foreground(th.FG()).Render(
		"Click and drag across the screen to play.\n" +
			"Left to right walks up the scale, up and down bends and brightens the note.")
	sections := m.keys.sections()
	muted := lipgloss.NewStyle().Foreground(th.Muted())
	keys := lipgloss.JoinHorizontal(lipgloss.Top,
		muted.Render(widgets.RenderKeyHelp(sections[:2])),
		"    ",
		muted.Render(widgets.RenderKeyHelp(sections[2:])),
	)
	start := lipgloss.NewStyle().Foreground(th.Success()).Render("Press any key or click to start")
	if !m.Inst.AudioAvailable() {
		start += "\n" + lipgloss.NewStyle().Foreground(th.Warning()).Render("No audio device: playing silently")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent()).
		Padding(0, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, intro, "", keys, "", start))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
