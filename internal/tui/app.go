package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	// Shared application state
	SelectedReceiver *Receiver
	ScanWindow       time.Duration
	DefaultApp       string

	// UI state
	Width  int
	Height int
}

// NewAppModel creates a new application model. When receiver is non-nil the
// discovery screen is skipped and the dashboard opens directly.
func NewAppModel(receiver *Receiver, scanWindow time.Duration, defaultApp string) AppModel {
	model := AppModel{
		ScanWindow:       scanWindow,
		DefaultApp:       defaultApp,
		SelectedReceiver: receiver,
	}

	if receiver != nil {
		model.CurrentScreen = ScreenDashboard
		model.DashboardModel = NewDashboardModel(receiver, defaultApp)
	} else {
		model.CurrentScreen = ScreenDiscovery
		model.DiscoveryModel = NewDiscoveryModel(scanWindow)
	}

	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenDashboard:
		return m.DashboardModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.DiscoveryModel.Width = msg.Width
		m.DiscoveryModel.Height = msg.Height
		m.DashboardModel.Width = msg.Width
		m.DashboardModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		// Check if user selected a receiver
		if m.DiscoveryModel.Selected {
			m.SelectedReceiver = m.DiscoveryModel.GetSelectedReceiver()
			if m.SelectedReceiver != nil {
				return m.transitionTo(ScreenDashboard)
			}
		}

	case ScreenDashboard:
		updated, c := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)
		cmd = c

		// Check if user wants to go back
		if m.DashboardModel.IsBackRequested() {
			return m.transitionTo(ScreenDiscovery)
		}
	}

	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen

	var cmd tea.Cmd

	switch screen {
	case ScreenDiscovery:
		m.SelectedReceiver = nil
		m.DiscoveryModel = NewDiscoveryModel(m.ScanWindow)
		m.DiscoveryModel.Width = m.Width
		m.DiscoveryModel.Height = m.Height
		cmd = m.DiscoveryModel.Init()

	case ScreenDashboard:
		if m.SelectedReceiver != nil {
			m.DashboardModel = NewDashboardModel(m.SelectedReceiver, m.DefaultApp)
			// Copy terminal dimensions to the new dashboard model
			m.DashboardModel.Width = m.Width
			m.DashboardModel.Height = m.Height
			cmd = m.DashboardModel.Init()
		}
	}

	return m, cmd
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return "Unknown screen"
	}
}

// Run starts the interactive controller, beginning at discovery. scanWindow
// bounds how long each scan collects advertisements; defaultApp pre-selects
// an application on the dashboard.
func Run(scanWindow time.Duration, defaultApp string) error {
	model := NewAppModel(nil, scanWindow, defaultApp)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}

// RunDashboard opens the dashboard directly for an already-resolved
// receiver. Going back from the dashboard still lands on discovery, so a
// default scan window applies there.
func RunDashboard(receiver *Receiver, defaultApp string) error {
	model := NewAppModel(receiver, 5*time.Second, defaultApp)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
