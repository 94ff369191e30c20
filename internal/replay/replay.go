// Package replay provides the Bubble Tea playback interface for gesture
// recordings. It feeds a recording through the decode engine at its
// original pace and shows the keyboard, the gesture state, and the
// ranked candidates.
package replay

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/gliss/internal/engine"
	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/record"
)

const maxStepDelay = 500 * time.Millisecond

var (
	keyStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Foreground(lipgloss.Color("#8C8C8C"))
	activeKeyStyle = keyStyle.Foreground(lipgloss.Color("#F0F0F0")).BorderForeground(lipgloss.Color("#C89A3A"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	rawStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

type stepMsg struct{}

type engineMsg struct {
	event engine.Event
}

type playbackDone struct{}

// Model implements the Bubble Tea replay UI.
type Model struct {
	rec *record.Recording
	eng *engine.Engine
	lay *layout.Layout

	idx     int
	playing bool
	speed   float64

	width  int
	height int

	active      map[string]struct{}
	lastGesture string
	raw         string
	latency     time.Duration
	candidates  table.Model
	finished    bool
}

// NewModel constructs a replay model. The engine must have been built
// with ShowPath enabled for the key highlight to track the finger.
func NewModel(rec *record.Recording, eng *engine.Engine, lay *layout.Layout, speed float64) *Model {
	if speed <= 0 {
		speed = 1
	}
	columns := []table.Column{
		{Title: "Word", Width: 16},
		{Title: "Score", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(6),
		table.WithFocused(false),
	)
	return &Model{
		rec:        rec,
		eng:        eng,
		lay:        lay,
		playing:    true,
		speed:      speed,
		active:     map[string]struct{}{},
		candidates: t,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.scheduleStep(), m.waitForEvent())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.eng.Close()
			return m, tea.Quit
		case " ":
			if !m.finished {
				m.playing = !m.playing
				if m.playing {
					return m, m.scheduleStep()
				}
			}
			return m, nil
		case "n":
			if !m.playing && !m.finished {
				m.feedNext()
				return m, nil
			}
			return m, nil
		}
		return m, nil
	case stepMsg:
		if !m.playing || m.finished {
			return m, nil
		}
		m.feedNext()
		if m.finished {
			return m, nil
		}
		return m, m.scheduleStep()
	case engineMsg:
		m.applyEvent(msg.event)
		return m, m.waitForEvent()
	case playbackDone:
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Replay: %s (%s)", m.rec.Layout, m.rec.Lang)))
	b.WriteString("\n\n")
	b.WriteString(m.renderKeyboard())
	b.WriteString("\n")
	if m.lastGesture != "" {
		b.WriteString(fmt.Sprintf("Gesture: %s", m.lastGesture))
		if m.raw != "" {
			b.WriteString("  Raw: " + rawStyle.Render(m.raw))
		}
		if m.latency > 0 {
			b.WriteString(fmt.Sprintf("  Ranked in %s", m.latency.Round(time.Millisecond)))
		}
		b.WriteString("\n")
	}
	if len(m.candidates.Rows()) > 0 {
		b.WriteString(m.candidates.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.statusLine()))
	return b.String()
}

func (m *Model) statusLine() string {
	state := "playing"
	switch {
	case m.finished:
		state = "finished"
	case !m.playing:
		state = "paused"
	}
	return fmt.Sprintf("%d/%d events · %s · space pause · n step · q quit", m.idx, len(m.rec.Events), state)
}

// feedNext pushes one recorded touch event into the engine.
func (m *Model) feedNext() {
	if m.idx >= len(m.rec.Events) {
		m.finished = true
		return
	}
	ev := m.rec.Events[m.idx]
	m.idx++
	m.highlight(ev)
	m.eng.HandleTouch(ev)
	if m.idx >= len(m.rec.Events) {
		m.finished = true
	}
}

func (m *Model) highlight(ev model.TouchEvent) {
	if ev.Phase == model.TouchDown {
		m.active = map[string]struct{}{}
		m.raw = ""
		m.latency = 0
		m.candidates.SetRows(nil)
	}
	if key, ok := m.lay.KeyAt(geom.Point{X: ev.X, Y: ev.Y}); ok {
		m.active[key.Label] = struct{}{}
	}
}

func (m *Model) applyEvent(ev engine.Event) {
	switch ev := ev.(type) {
	case engine.GestureEvent:
		m.lastGesture = ev.Result.Kind.String()
	case engine.CandidatesEvent:
		m.raw = ev.RawSequence
		m.latency = ev.Latency
		m.candidates.SetRows(candidateRows(ev.Candidates))
	}
}

func (m *Model) scheduleStep() tea.Cmd {
	delay := m.nextDelay()
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return stepMsg{}
	})
}

// nextDelay returns the recorded gap to the next event, scaled by the
// playback speed and capped so long pauses stay watchable.
func (m *Model) nextDelay() time.Duration {
	if m.idx == 0 || m.idx >= len(m.rec.Events) {
		return time.Millisecond
	}
	gap := m.rec.Events[m.idx].T - m.rec.Events[m.idx-1].T
	delay := time.Duration(float64(gap)/m.speed) * time.Millisecond
	if delay > maxStepDelay {
		return maxStepDelay
	}
	if delay < time.Millisecond {
		return time.Millisecond
	}
	return delay
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.eng.Events()
		if !ok {
			return playbackDone{}
		}
		return engineMsg{event: ev}
	}
}

func (m *Model) renderKeyboard() string {
	rows := keyRows(m.lay)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, key := range row {
			style := keyStyle
			if _, ok := m.active[key.Label]; ok {
				style = activeKeyStyle
			}
			cells = append(cells, style.Render(keyLabel(key)))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func keyLabel(key model.KeyGeometry) string {
	if key.Type == model.KeyControl {
		return "<" + key.Label + ">"
	}
	return key.Label
}

// keyRows groups layout keys into visual rows by vertical position.
func keyRows(lay *layout.Layout) [][]model.KeyGeometry {
	keys := append([]model.KeyGeometry(nil), lay.Keys()...)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Bounds.Y != keys[j].Bounds.Y {
			return keys[i].Bounds.Y < keys[j].Bounds.Y
		}
		return keys[i].Bounds.X < keys[j].Bounds.X
	})
	var rows [][]model.KeyGeometry
	for _, key := range keys {
		if len(rows) > 0 {
			last := rows[len(rows)-1]
			if key.Bounds.Y < last[0].Bounds.Y+last[0].Bounds.H/2 {
				rows[len(rows)-1] = append(rows[len(rows)-1], key)
				continue
			}
		}
		rows = append(rows, []model.KeyGeometry{key})
	}
	return rows
}

func candidateRows(candidates []model.WordCandidate) []table.Row {
	rows := make([]table.Row, 0, len(candidates))
	for _, c := range candidates {
		word := c.Word
		if c.Fallback {
			word += " *"
		}
		rows = append(rows, table.Row{word, fmt.Sprintf("%.3f", c.Score)})
	}
	return rows
}

// Run plays the recording in the terminal until it ends or the user
// quits.
func Run(rec *record.Recording, eng *engine.Engine, lay *layout.Layout, speed float64) error {
	p := tea.NewProgram(NewModel(rec, eng, lay, speed), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	return nil
}
