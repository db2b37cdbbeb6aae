// Package tui implements the interactive terminal controller for DIAL
// receivers.
//
// This package provides a full-screen TUI for discovering receivers on the
// local network and driving application launch, status, and stop against
// them. Built using the Bubble Tea framework, it follows the Elm
// architecture with immutable state updates and a clean Model-Update-View
// pattern.
//
// # Architecture
//
// The TUI is organized into two screens:
//   - Discovery: Scan the network over SSDP, or enter a description URL
//     manually
//   - Dashboard: Query, launch, and stop applications on one receiver
//
// All screens use a unified container pattern (RenderApplicationContainer)
// for consistent layout with header, content area, and context-sensitive
// footer.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Loading indicators
//   - bubbles/textinput: App name, payload, and URL entry
//   - bubbles/progress: Scan progress bar
//   - bubbles/list: Receiver lists with filtering
//   - bubbles/help: Context-aware help system
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	// Discover and control interactively
//	if err := tui.Run(5*time.Second, "YouTube"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Screen Flow
//
//  1. Discovery Screen:
//     - Automatically searches for DIAL receivers over SSDP multicast
//     - Fetches each receiver's description document for identity details
//     - Displays found receivers as cards
//     - Allows manual description-URL entry if a receiver is not found
//     - User selects a receiver to control
//
//  2. Dashboard Screen:
//     - Shows the receiver's identity and app-control base URL
//     - App name and launch payload are edited inline
//     - Launch, stop, and status refresh run as async commands with a
//     spinner while the request is in flight
//     - Results and errors appear in an inline status panel
//
// # Key Bindings
//
// Each screen has context-aware key bindings:
//   - Discovery: ↑/↓ navigate, Enter select, r rescan, m manual URL, q quit
//   - Dashboard: a app name, p payload, l launch, s stop, i refresh,
//     esc back, q quit
//   - Editing: Enter confirm, ESC cancel
//
// Help text automatically updates based on screen state.
//
// # State Management
//
// The TUI maintains immutable state with explicit updates:
//   - Models contain all state (no global variables)
//   - Update() returns new model + commands
//   - View() is pure function of model state
//   - Commands represent async operations (SSDP scans, HTTP requests)
package tui
