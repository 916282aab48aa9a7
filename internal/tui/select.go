package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rigup/internal/catalog"
	"rigup/internal/session"
)

const logPanelLines = 6

// progressMsg wraps a session event for the bubbletea loop.
type progressMsg session.ProgressEvent

// runDoneMsg signals that a resolve or install run finished.
type runDoneMsg struct {
	err error
}

// installerModel is the interactive selection screen: one row per catalog
// entry, keybindings for selection and dry-run, and engine runs driven
// from the keyboard. Session events stream in as rows update.
type installerModel struct {
	cat  catalog.Catalog
	sess *session.Session
	eng  *session.Engine

	cursor   int
	running  bool
	quitting bool
	notice   string
	err      error

	spin     spinner.Model
	logView  viewport.Model
	logLines []string
	width    int

	// done releases the event listener goroutine when the program quits.
	done chan struct{}
}

func newInstallerModel(cat catalog.Catalog, eng *session.Engine) installerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return installerModel{
		cat:     cat,
		sess:    eng.Session,
		eng:     eng,
		spin:    sp,
		logView: viewport.New(80, logPanelLines),
		done:    make(chan struct{}),
	}
}

func listenEvents(events <-chan session.ProgressEvent, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-events:
			return progressMsg(ev)
		case <-done:
			return nil
		}
	}
}

func (m installerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, listenEvents(m.sess.Events(), m.done))
}

func (m installerModel) startRun(run func(context.Context) error) (installerModel, tea.Cmd) {
	if m.running {
		m.notice = "a run is already in flight (c to cancel)"
		return m, nil
	}
	m.running = true
	m.notice = ""
	return m, func() tea.Msg {
		err := run(context.Background())
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return runDoneMsg{err: err}
	}
}

func (m installerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.logView.Width = msg.Width - 2
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressMsg:
		m.appendLog(session.ProgressEvent(msg))
		return m, listenEvents(m.sess.Events(), m.done)

	case runDoneMsg:
		m.running = false
		if msg.err != nil && !errors.Is(msg.err, session.ErrRunInFlight) {
			m.err = msg.err
			m.notice = msg.err.Error()
		}
		if m.quitting {
			close(m.done)
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m installerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cat.Software)-1 {
			m.cursor++
		}
	case " ":
		id := m.cat.Software[m.cursor].ID
		if err := m.sess.Toggle(id); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = ""
		}
	case "a":
		m.sess.SelectAll()
	case "n":
		m.sess.DeselectAll()
	case "d":
		if m.sess.ToggleDryRun() {
			m.notice = "dry run on"
		} else {
			m.notice = "dry run off"
		}
	case "r":
		return m.startRun(m.eng.ResolveSelected)
	case "i":
		return m.startRun(m.eng.InstallSelected)
	case "c":
		m.eng.Cancel()
	case "q", "ctrl+c", "esc":
		if m.quitting {
			return m, nil
		}
		m.quitting = true
		if m.running {
			m.eng.Cancel()
			return m, nil
		}
		close(m.done)
		return m, tea.Quit
	}
	return m, nil
}

func (m *installerModel) appendLog(ev session.ProgressEvent) {
	line := fmt.Sprintf("%s: %s", ev.EntryID, ev.Status)
	if ev.Detail != "" {
		line += " (" + TruncateWithEllipsis(ev.Detail, 60) + ")"
	}
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 200 {
		m.logLines = m.logLines[len(m.logLines)-200:]
	}
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
)

func (m installerModel) View() string {
	if m.quitting && !m.running {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("rigup"))
	b.WriteString(faintStyle.Render("  select software, then r to resolve or i to install"))
	b.WriteString("\n\n")

	header := fmt.Sprintf("    %-3s %-18s %-18s %-12s %s", "", "NAME", "STATUS", "VERSION", "DETAIL")
	b.WriteString(HeaderStyle.Render(header))
	b.WriteByte('\n')

	for i, snap := range m.sess.Snapshot(m.cat) {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("▸ ")
		}
		mark := "[ ]"
		if snap.Status.Selected() {
			mark = "[x]"
		}
		name := snap.DisplayName
		if name == "" {
			name = snap.ID
		}
		status := snap.Status.String()
		line := fmt.Sprintf("%s  %s %-18s %s %-12s %s",
			prefix,
			mark,
			TruncateWithEllipsis(name, 18),
			StatusStyle(status).Render(pad(status, 18)),
			NonEmptyOrDash(TruncateWithEllipsis(snap.Version, 12)),
			faintStyle.Render(TruncateWithEllipsis(snap.Detail, 48)),
		)
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if len(m.logLines) > 0 {
		b.WriteString(m.logView.View())
		b.WriteByte('\n')
	}

	if m.running {
		fmt.Fprintf(&b, "%s working... (%s)\n", m.spin.View(), strings.Join(m.sess.Counts(), " "))
	}
	if m.notice != "" {
		b.WriteString(faintStyle.Render(m.notice))
		b.WriteByte('\n')
	}

	dry := ""
	if m.sess.DryRun() {
		dry = "  DRY RUN"
	}
	b.WriteString(faintStyle.Render("[space] select  [a/n] all/none  [d] dry run  [r] resolve  [i] install  [c] cancel  [q] quit" + dry))
	b.WriteByte('\n')

	return b.String()
}

// RunInstaller starts the interactive selection screen and blocks until
// the user quits. The engine keeps running in the background during
// resolve/install; quitting mid-run cancels it first.
func RunInstaller(out io.Writer, cat catalog.Catalog, eng *session.Engine) error {
	p := tea.NewProgram(newInstallerModel(cat, eng), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(installerModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
