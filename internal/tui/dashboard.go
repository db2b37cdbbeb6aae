package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dialproto/godial/internal/controller"
	"github.com/dialproto/godial/internal/dial"
)

// requestTimeout bounds every app-control request issued from the dashboard.
const requestTimeout = 10 * time.Second

// Message types for async operations
type appInfoResultMsg struct {
	app *dial.App
	err error
}

type launchResultMsg struct {
	pid string
	err error
}

type stopResultMsg struct {
	status int
	err    error
}

// EditField represents which input is active for inline editing
type EditField int

const (
	EditNone EditField = iota
	EditAppName
	EditPayload
)

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	App     key.Binding
	Payload key.Binding
	Launch  key.Binding
	Stop    key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.App, k.Launch, k.Stop, k.Refresh, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.App, k.Payload, k.Launch},
		{k.Stop, k.Refresh, k.Back, k.Quit},
	}
}

// editKeyMap defines key bindings while an input field is active
type editKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Confirm, k.Cancel},
	}
}

// DashboardModel represents the app-control screen for one receiver
type DashboardModel struct {
	// Receiver connection
	Receiver *Receiver

	// Application state
	CurrentApp *dial.App // Last fetched application status
	LastPid    string    // Correlation token from the last launch

	// Input state
	EditingField EditField
	AppNameInput textinput.Model
	PayloadInput textinput.Model

	// Request state
	Busy          bool // A request is in flight
	StatusMessage string
	StatusIsError bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model

	// Navigation results
	BackRequested bool

	// Help
	Help     help.Model
	Keys     dashboardKeyMap
	EditKeys editKeyMap
}

// NewDashboardModel creates a new dashboard for the given receiver.
// defaultApp, when non-empty, pre-selects an application and queries its
// status on init.
func NewDashboardModel(receiver *Receiver, defaultApp string) DashboardModel {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize text inputs
	appNameInput := textinput.New()
	appNameInput.Placeholder = "YouTube"
	appNameInput.CharLimit = 64
	appNameInput.Width = 40
	appNameInput.SetValue(defaultApp)

	payloadInput := textinput.New()
	payloadInput.Placeholder = "v=dQw4w9WgXcQ"
	payloadInput.CharLimit = 200
	payloadInput.Width = 50

	// Initialize help
	h := help.New()

	// Initialize key bindings
	keys := dashboardKeyMap{
		App: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "app name"),
		),
		Payload: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "payload"),
		),
		Launch: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "launch"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("i", "r"),
			key.WithHelp("i", "refresh status"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	editKeys := editKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	return DashboardModel{
		Receiver:     receiver,
		EditingField: EditNone,
		AppNameInput: appNameInput,
		PayloadInput: payloadInput,
		Spinner:      s,
		Help:         h,
		Keys:         keys,
		EditKeys:     editKeys,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	if m.AppNameInput.Value() != "" {
		return tea.Batch(m.fetchAppInfo(), m.Spinner.Tick)
	}
	return nil
}

// IsBackRequested reports whether the user asked to return to discovery
func (m DashboardModel) IsBackRequested() bool {
	return m.BackRequested
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.Busy {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case appInfoResultMsg:
		m.Busy = false
		if msg.err != nil {
			m.CurrentApp = nil
			m.setError(msg.err)
			return m, nil
		}
		m.CurrentApp = msg.app
		m.setStatus(fmt.Sprintf("✓ %s is %s", msg.app.Name, msg.app.InferredState()))
		return m, nil

	case launchResultMsg:
		m.Busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.LastPid = msg.pid
		if msg.pid != "" {
			m.setStatus(fmt.Sprintf("✓ Launched (instance %s)", msg.pid))
		} else {
			m.setStatus("✓ Launched")
		}
		// Refresh status so the panel reflects the new state
		m.Busy = true
		return m, tea.Batch(m.fetchAppInfo(), m.Spinner.Tick)

	case stopResultMsg:
		m.Busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if msg.status == 200 {
			m.LastPid = ""
			m.setStatus("✓ Stopped")
			m.Busy = true
			return m, tea.Batch(m.fetchAppInfo(), m.Spinner.Tick)
		}
		m.StatusIsError = true
		m.StatusMessage = fmt.Sprintf("✗ Stop refused (HTTP %d)", msg.status)
		return m, nil

	case tea.KeyMsg:
		if m.EditingField != EditNone {
			return m.updateEditMode(msg)
		}
		return m.updateNormalMode(msg)
	}

	return m, nil
}

// updateNormalMode handles input when no field is being edited
func (m DashboardModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		m.BackRequested = true
		return m, nil

	case "a":
		m.EditingField = EditAppName
		m.AppNameInput.Focus()
		return m, nil

	case "p":
		m.EditingField = EditPayload
		m.PayloadInput.Focus()
		return m, nil

	case "l":
		if m.Busy || m.AppNameInput.Value() == "" {
			return m, nil
		}
		m.Busy = true
		m.setStatus("Launching...")
		return m, tea.Batch(m.launchApp(), m.Spinner.Tick)

	case "s":
		if m.Busy || m.AppNameInput.Value() == "" {
			return m, nil
		}
		pid := m.stopPid()
		if pid == "" {
			m.StatusIsError = true
			m.StatusMessage = "✗ No running instance to stop"
			return m, nil
		}
		m.Busy = true
		m.setStatus("Stopping...")
		return m, tea.Batch(m.stopApp(pid), m.Spinner.Tick)

	case "i", "r":
		if m.Busy || m.AppNameInput.Value() == "" {
			return m, nil
		}
		m.Busy = true
		m.setStatus("Querying...")
		return m, tea.Batch(m.fetchAppInfo(), m.Spinner.Tick)
	}

	return m, nil
}

// updateEditMode handles input while a text field is active
func (m DashboardModel) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.blurInputs()
		return m, nil

	case "enter":
		field := m.EditingField
		m.blurInputs()
		// Confirming a new app name invalidates the previous status
		if field == EditAppName {
			m.CurrentApp = nil
			m.LastPid = ""
			if m.AppNameInput.Value() != "" {
				m.Busy = true
				m.setStatus("Querying...")
				return m, tea.Batch(m.fetchAppInfo(), m.Spinner.Tick)
			}
		}
		return m, nil
	}

	switch m.EditingField {
	case EditAppName:
		m.AppNameInput, cmd = m.AppNameInput.Update(msg)
	case EditPayload:
		m.PayloadInput, cmd = m.PayloadInput.Update(msg)
	}
	return m, cmd
}

// blurInputs leaves edit mode
func (m *DashboardModel) blurInputs() {
	m.EditingField = EditNone
	m.AppNameInput.Blur()
	m.PayloadInput.Blur()
}

// stopPid picks the instance token used for stop: the last launch token,
// falling back to the pid reported by the receiver.
func (m DashboardModel) stopPid() string {
	if m.LastPid != "" {
		return m.LastPid
	}
	if m.CurrentApp != nil {
		return m.CurrentApp.Pid
	}
	return ""
}

func (m *DashboardModel) setStatus(text string) {
	m.StatusMessage = text
	m.StatusIsError = false
}

func (m *DashboardModel) setError(err error) {
	m.StatusIsError = true
	if controller.RemoteStatus(err) == 404 {
		m.StatusMessage = fmt.Sprintf("✗ Application %q is not hosted on this receiver", m.AppNameInput.Value())
		return
	}
	m.StatusMessage = fmt.Sprintf("✗ %v", err)
}

// fetchAppInfo returns a command that queries the selected app's status
func (m DashboardModel) fetchAppInfo() tea.Cmd {
	remote := m.Receiver.Remote
	name := m.AppNameInput.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		app, err := remote.FetchAppInfo(ctx, name)
		return appInfoResultMsg{app: app, err: err}
	}
}

// launchApp returns a command that launches the selected app
func (m DashboardModel) launchApp() tea.Cmd {
	remote := m.Receiver.Remote
	name := m.AppNameInput.Value()
	payload := m.PayloadInput.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		instance, err := remote.Launch(ctx, name, payload, "")
		return launchResultMsg{pid: controller.InstancePid(instance), err: err}
	}
}

// stopApp returns a command that stops the given app instance
func (m DashboardModel) stopApp(pid string) tea.Cmd {
	remote := m.Receiver.Remote
	name := m.AppNameInput.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		status, err := remote.Stop(ctx, name, pid)
		return stopResultMsg{status: status, err: err}
	}
}

// View renders the dashboard screen
func (m DashboardModel) View() string {
	var b strings.Builder

	name := m.Receiver.Remote.Device.FriendlyName
	if name == "" {
		name = m.Receiver.Record.Location
	}

	b.WriteString(RenderTitle(name))
	b.WriteString("\n")

	// Receiver identity panel
	b.WriteString(RenderInfo(m.Receiver.Remote.FormatDeviceInfo()))
	b.WriteString("\n")

	// Application panel
	b.WriteString(m.renderAppPanel())
	b.WriteString("\n")

	// Status line
	if m.Busy {
		b.WriteString(SpinnerStyle.Render(fmt.Sprintf("  %s %s", m.Spinner.View(), m.StatusMessage)))
		b.WriteString("\n")
	} else if m.StatusMessage != "" {
		if m.StatusIsError {
			b.WriteString(ErrorBoxStyle.Render(m.StatusMessage))
		} else {
			b.WriteString(SuccessBoxStyle.Render("  " + m.StatusMessage))
		}
		b.WriteString("\n")
	}

	// Context-sensitive help text
	var helpText string
	if m.EditingField != EditNone {
		helpText = m.Help.View(m.EditKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}

// renderAppPanel renders the selected application and its last known state
func (m DashboardModel) renderAppPanel() string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(SubtleColor)

	b.WriteString(labelStyle.Render("  Application: "))
	if m.EditingField == EditAppName {
		b.WriteString(m.AppNameInput.View())
	} else if m.AppNameInput.Value() != "" {
		b.WriteString(m.AppNameInput.Value())
	} else {
		b.WriteString(SubtitleStyle.Render("(press 'a' to choose an application)"))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("  Payload:     "))
	if m.EditingField == EditPayload {
		b.WriteString(m.PayloadInput.View())
	} else if m.PayloadInput.Value() != "" {
		b.WriteString(m.PayloadInput.Value())
	} else {
		b.WriteString(SubtitleStyle.Render("(none)"))
	}
	b.WriteString("\n")

	if m.CurrentApp != nil {
		b.WriteString("\n")
		b.WriteString(controller.FormatAppInfo(m.CurrentApp))
	}

	return b.String()
}
