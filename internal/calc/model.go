package calc

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/vtc/pkg/vtc"
)

const maxHistory = 8

type historyEntry struct {
	Input  string
	Result string
}

// Model is an interactive timecode calculator. Lines are evaluated against a
// running value; tab cycles the working framerate.
type Model struct {
	rates     []vtc.NamedRate
	rateIndex int
	precision int

	value   vtc.Timecode
	input   string
	history []historyEntry
	err     error

	width    int
	quitting bool
}

// NewModel creates a calculator starting at zero at the named rate.
// precision sets the runtime display digits.
func NewModel(rateName string, precision int) (*Model, error) {
	rate, err := vtc.ParseRate(rateName)
	if err != nil {
		return nil, err
	}

	rates := vtc.StandardRates()
	index := -1
	for i, nr := range rates {
		if nr.Rate.Equal(rate) {
			index = i
			break
		}
	}
	if index < 0 {
		rates = append(rates, vtc.NamedRate{Name: rateName, Rate: rate})
		index = len(rates) - 1
	}

	value, err := vtc.FromFrames(0, rate)
	if err != nil {
		return nil, err
	}

	return &Model{
		rates:     rates,
		rateIndex: index,
		precision: precision,
		value:     value,
	}, nil
}

// Rate returns the working framerate.
func (m *Model) Rate() vtc.Framerate {
	return m.rates[m.rateIndex].Rate
}

// Value returns the running value.
func (m *Model) Value() vtc.Timecode {
	return m.value
}

// Err returns the error from the last evaluated line, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.input == "" {
				m.quitting = true
				return m, tea.Quit
			}
			m.input = ""
		case tea.KeyEnter:
			m.evaluate()
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyTab:
			m.cycleRate()
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *Model) evaluate() {
	line := strings.TrimSpace(m.input)
	if line == "" {
		return
	}

	result, err := Evaluate(m.value, line, m.Rate())
	m.err = err
	if err != nil {
		return
	}

	m.value = result
	m.input = ""
	m.history = append(m.history, historyEntry{Input: line, Result: result.Timecode()})
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

// cycleRate moves to the next rate, keeping the running value's elapsed time.
func (m *Model) cycleRate() {
	m.rateIndex = (m.rateIndex + 1) % len(m.rates)
	value, err := vtc.FromSeconds(m.value.Rational(), m.Rate())
	if err != nil {
		m.err = err
		return
	}
	m.value = value
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	nr := m.rates[m.rateIndex]
	header := HeaderStyle.Render("VTC  " + RateBadge(nr.Name, nr.Rate.NTSC()))

	display := DisplayStyle.Render(m.value.Timecode())

	rows := []struct {
		label string
		value string
	}{
		{"Frames", m.value.BigFrames().String()},
		{"Seconds", m.value.Seconds().String()},
		{"Runtime", m.value.Runtime(m.precision)},
		{"Feet+Frames", m.value.FeetAndFrames()},
		{"Premiere Ticks", m.value.BigPremiereTicks().String()},
	}
	var details []string
	for _, r := range rows {
		details = append(details, LabelStyle.Render(r.label)+ValueStyle.Render(r.value))
	}

	var history []string
	for _, h := range m.history {
		history = append(history, MutedStyle.Render(h.Input+"  =  ")+ValueStyle.Render(h.Result))
	}
	if len(history) == 0 {
		history = append(history, MutedStyle.Render("no history"))
	}

	prompt := PromptStyle.Render("> ") + m.input
	if m.err != nil {
		prompt += "\n" + ErrorStyle.Render(m.err.Error())
	}

	help := MutedStyle.Render("enter evaluate · tab rate · esc clear/quit · ops + - * / // % neg abs")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{display}, details...)...)),
		PanelStyle.Render(strings.Join(history, "\n")),
		prompt,
		help,
	)
}
