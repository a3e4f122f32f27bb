package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-lookup/internal/coordinator"
)

// stateChangedMsg tells Update to re-read the coordinator state.
type stateChangedMsg struct{}

// Model is the Bubble Tea model around a Coordinator. Network calls run as
// commands so Update never blocks.
type Model struct {
	ctx   context.Context
	coord *coordinator.Coordinator
	input []rune
	state coordinator.State
}

// New creates the model. The input box starts with the coordinator's query city.
func New(ctx context.Context, coord *coordinator.Coordinator) Model {
	state := coord.State()
	return Model{
		ctx:   ctx,
		coord: coord,
		input: []rune(state.QueryCity),
		state: state,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.resolveLocation(), m.waitForChange())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.state = m.coord.State()
		return m, m.waitForChange()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.state.IsLoading {
				return m, nil
			}
			return m, m.submit(string(m.input))
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
				m.coord.SetQueryCity(string(m.input))
			}
		case tea.KeyRunes, tea.KeySpace:
			m.input = append(m.input, msg.Runes...)
			m.coord.SetQueryCity(string(m.input))
		}
	}
	return m, nil
}

func (m Model) View() string {
	return Render(m.state, string(m.input))
}

func (m Model) resolveLocation() tea.Cmd {
	return func() tea.Msg {
		m.coord.ResolveInitialLocation(m.ctx)
		return nil
	}
}

func (m Model) submit(input string) tea.Cmd {
	return func() tea.Msg {
		m.coord.SubmitCityQuery(m.ctx, input)
		return nil
	}
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.coord.Changes():
			return stateChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}
