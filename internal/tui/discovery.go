package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dialproto/godial/internal/controller"
	"github.com/dialproto/godial/internal/discover"
)

// Receiver pairs a discovery record with its fetched description, ready for
// app control.
type Receiver struct {
	Record discover.Record
	Remote *controller.RemoteDevice
}

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	receivers []*Receiver
	err       error
}
type manualFetchMsg struct {
	receiver *Receiver
	err      error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual URL entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings for scanning mode
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Manual, s.Quit},
	}
}

// emptyScreenKeyMap defines key bindings for empty results screen
type emptyScreenKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (e emptyScreenKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{e.Rescan, e.Manual, e.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (e emptyScreenKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{e.Rescan, e.Manual, e.Quit},
	}
}

// receiverItem wraps a Receiver for use with bubbles/list
type receiverItem struct {
	receiver *Receiver
}

// Implement list.Item interface
func (r receiverItem) FilterValue() string {
	// Filter by friendly name, location, or UUID
	d := r.receiver.Remote.Device
	return d.FriendlyName + " " + d.DescriptionURL + " " + d.UUID
}

// Title returns the receiver name for list display
func (r receiverItem) Title() string {
	name := r.receiver.Remote.Device.FriendlyName
	if name == "" {
		name = r.receiver.Record.Location
	}
	return name
}

// Description returns receiver details for list display
func (r receiverItem) Description() string {
	d := r.receiver.Remote.Device
	model := d.ModelName
	if model == "" {
		model = "Unknown"
	}
	return fmt.Sprintf("%s • Model: %s • Ready", r.receiver.Record.Location, model)
}

// receiverDelegate is a custom list delegate for rendering receiver cards
type receiverDelegate struct {
	width int
}

func (d receiverDelegate) Height() int { return 8 } // Card height including borders

func (d receiverDelegate) Spacing() int { return 1 } // Spacing between cards

func (d receiverDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d receiverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(receiverItem)
	if !ok {
		return
	}

	dev := ri.receiver.Remote.Device
	selected := index == m.Index()

	name := dev.FriendlyName
	if name == "" {
		name = ri.receiver.Record.Location
	}

	model := dev.ModelName
	if model == "" {
		model = "Unknown"
	}

	// Build content lines
	var content strings.Builder

	// Add selection indicator to receiver name
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")

	// Receiver details
	content.WriteString(fmt.Sprintf("  UUID:     %s\n", dev.UUID))
	content.WriteString(fmt.Sprintf("  Location: %s\n", ri.receiver.Record.Location))
	content.WriteString(fmt.Sprintf("  Model:    %s\n", model))

	// Status with inline color styling (no border)
	statusStyle := lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	content.WriteString(fmt.Sprintf("  Status:   %s", statusStyle.Render("Ready")))

	// Create responsive card style
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle = cardStyle.Width(cardWidth)

	// Highlight selected card
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the receiver discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning     bool
	ScanWindow   time.Duration
	ReceiverList list.Model
	Selected     bool
	Err          error

	// Manual URL entry state
	ManualMode    bool
	LocationInput textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
	EmptyKeys     emptyScreenKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel(scanWindow time.Duration) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize location input
	locationInput := textinput.New()
	locationInput.Placeholder = "http://192.168.1.50:8008/ssdp/device-desc.xml"
	locationInput.CharLimit = 200
	locationInput.Width = 50

	// Initialize progress bar
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	// Initialize receiver list with custom delegate
	delegate := receiverDelegate{width: MinTerminalWidth}
	receiverList := list.New([]list.Item{}, delegate, 0, 0)
	receiverList.Title = "Discovered Receivers"
	receiverList.SetShowStatusBar(false)
	receiverList.SetFilteringEnabled(true)
	receiverList.Styles.Title = TitleStyle

	// Initialize help
	h := help.New()

	// Initialize key bindings for normal mode
	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "control"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for manual entry mode
	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	// Initialize key bindings for scanning mode
	scanningKeys := scanningKeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for empty results
	emptyKeys := emptyScreenKeyMap{
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DiscoveryModel{
		Scanning:      false,
		ScanWindow:    scanWindow,
		ReceiverList:  receiverList,
		Selected:      false,
		ManualMode:    false,
		LocationInput: locationInput,
		Spinner:       s,
		ProgressBar:   progressBar,
		Help:          h,
		Keys:          keys,
		ManualKeys:    manualKeys,
		ScanningKeys:  scanningKeys,
		EmptyKeys:     emptyKeys,
	}
}

// Init initializes the discovery model
func (m DiscoveryModel) Init() tea.Cmd {
	// Start scanning immediately - send start message then begin scan
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanReceivers(m.ScanWindow),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Update list size
		m.ReceiverList.SetWidth(msg.Width - 4)
		m.ReceiverList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		// Convert receivers to list items
		items := make([]list.Item, len(msg.receivers))
		for i, rcv := range msg.receivers {
			items[i] = receiverItem{receiver: rcv}
		}
		m.ReceiverList.SetItems(items)

	case manualFetchMsg:
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		// Prepend the manually added receiver and select it
		newItem := receiverItem{receiver: msg.receiver}
		items := append([]list.Item{newItem}, m.ReceiverList.Items()...)
		m.ReceiverList.SetItems(items)
		m.ReceiverList.Select(0)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Update list if not in manual mode or scanning
	if !m.ManualMode && !m.Scanning {
		m.ReceiverList, cmd = m.ReceiverList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in normal receiver list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter", " ":
		// Get selected receiver from list
		if selectedItem := m.ReceiverList.SelectedItem(); selectedItem != nil {
			m.Selected = true
			return m, nil
		}

	case "r":
		// Rescan
		m.ReceiverList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanReceivers(m.ScanWindow),
			m.Spinner.Tick,
		)

	case "m":
		// Switch to manual URL entry mode
		m.ManualMode = true
		m.LocationInput.SetValue("")
		m.LocationInput.Focus()
	}

	// Let the list handle up/down navigation
	return m, nil
}

// updateManualMode handles keyboard input in manual URL entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		// Cancel manual entry
		m.ManualMode = false
		m.LocationInput.SetValue("")
		m.LocationInput.Blur()
		return m, nil

	case "enter":
		value := m.LocationInput.Value()
		if value != "" {
			m.ManualMode = false
			m.LocationInput.SetValue("")
			m.LocationInput.Blur()
			// Fetch the description before adding to the list
			return m, fetchManualReceiver(value)
		}
	}

	// Update the text input
	m.LocationInput, cmd = m.LocationInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	// Use default width if not set
	width := m.Width
	if width == 0 {
		width = 72
	}

	// Build main content area
	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanning(width)
	} else {
		content = m.renderReceiverResults()
	}

	// Determine context-sensitive help text using bubbles/help
	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else if len(m.ReceiverList.Items()) > 0 {
		helpText = m.Help.View(m.Keys)
	} else {
		helpText = m.Help.View(m.EmptyKeys)
	}

	// Wrap with application container (full-screen layout with height)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a prominent, centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	elapsedSec := int(elapsed.Seconds())

	// Calculate progress against the scan window
	windowSec := int(m.ScanWindow.Seconds())
	if windowSec == 0 {
		windowSec = 1
	}
	progressPercent := min(100, (elapsedSec*100)/windowSec)
	progressFloat := float64(progressPercent) / 100.0

	// Build content components
	title := fmt.Sprintf("%s SEARCHING FOR RECEIVERS", m.Spinner.View())
	subtitle := "Scanning your network for DIAL receivers..."

	// Use bubbles/progress component (ViewAs already includes percentage display)
	progressBar := m.ProgressBar.ViewAs(progressFloat)
	elapsedText := fmt.Sprintf("Elapsed: %ds", elapsedSec)

	// Use lipgloss.JoinVertical for layout composition
	content := lipgloss.JoinVertical(lipgloss.Center,
		"", // Top spacing
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		progressBar,
		"",
		SubtitleStyle.Render(elapsedText),
		"", // Bottom spacing
	)

	// Use lipgloss.Place for centering
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderReceiverResults renders the receiver list or "none found" message
func (m DiscoveryModel) renderReceiverResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		// Error state
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")

		// Troubleshooting hints
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the receiver is powered on\n")
		b.WriteString("    • Check that you are on the same network segment\n")
		b.WriteString("    • Verify multicast traffic is not blocked\n")
		b.WriteString("    • Try rescanning (use 'r')\n")

	} else if len(m.ReceiverList.Items()) == 0 {
		// No receivers found
		b.WriteString("  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("⚠ No DIAL receivers found on your network"))
		b.WriteString("\n\n")

		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the receiver is powered on\n")
		b.WriteString("    • Check that you are on the same network segment\n")
		b.WriteString("    • Verify multicast traffic is not blocked\n")
		b.WriteString("    • Try rescanning (use 'r')\n")
		b.WriteString("\n")

	} else {
		// Receivers found - render the list
		b.WriteString(m.ReceiverList.View())
	}

	return b.String()
}

// min returns the minimum of two integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// renderManualEntry renders the manual description URL entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter receiver description URL"))
	b.WriteString("\n\n")

	// Input box using textinput component
	b.WriteString("  Description URL: ")
	b.WriteString(m.LocationInput.View())
	b.WriteString("\n\n")

	return b.String()
}

// GetSelectedReceiver returns the selected receiver (if any)
func (m DiscoveryModel) GetSelectedReceiver() *Receiver {
	if m.Selected {
		if selectedItem := m.ReceiverList.SelectedItem(); selectedItem != nil {
			if item, ok := selectedItem.(receiverItem); ok {
				return item.receiver
			}
		}
	}
	return nil
}

// scanReceivers returns a command that performs DIAL discovery over SSDP,
// collects advertisements for the scan window, and fetches the description
// of every discovered receiver.
func scanReceivers(window time.Duration) tea.Cmd {
	return func() tea.Msg {
		records, err := discover.ScanOnce(window)
		if err != nil {
			return scanCompleteMsg{err: err}
		}

		var receivers []*Receiver
		for _, rec := range records {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			remote, err := controller.FetchDevice(ctx, rec.Location)
			cancel()
			if err != nil {
				// Advertised but unreachable; skip it
				continue
			}
			receivers = append(receivers, &Receiver{Record: rec, Remote: remote})
		}

		return scanCompleteMsg{receivers: receivers}
	}
}

// fetchManualReceiver returns a command that fetches the description at a
// user-supplied URL and wraps it as a receiver.
func fetchManualReceiver(location string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		remote, err := controller.FetchDevice(ctx, location)
		if err != nil {
			return manualFetchMsg{err: err}
		}

		return manualFetchMsg{receiver: &Receiver{
			Record: discover.Record{
				Location:     location,
				DiscoveredAt: time.Now(),
			},
			Remote: remote,
		}}
	}
}
