package tui

import (
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user cancels work from the keyboard.
var ErrCancelled = errors.New("cancelled by user")

type workDoneMsg struct{ err error }

// progressModel shows a spinner until the work reports back.
type progressModel struct {
	spinner spinner.Model
	keys    KeyMap
	message string
	done    bool
	err     error
}

func newProgressModel(message string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SectionStyle
	return progressModel{spinner: s, keys: DefaultKeyMap(), message: message}
}

// Init implements tea.Model.
func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.done, m.err = true, ErrCancelled
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.message + "  " + HintStyle.Render(m.keys.HelpText())
}

// RunWithProgress runs work while a spinner with message is drawn on out.
// Without a styled terminal it just runs work. Cancelling from the keyboard
// returns ErrCancelled; work keeps running in the background and should
// watch its own context.
func RunWithProgress(out io.Writer, message string, work func() error) error {
	if !IsStyled() {
		return work()
	}

	p := tea.NewProgram(newProgressModel(message), tea.WithOutput(out))
	go func() {
		p.Send(workDoneMsg{err: work()})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(progressModel).err
}
