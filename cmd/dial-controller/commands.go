package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dialproto/godial/internal/config"
	"github.com/dialproto/godial/internal/controller"
	"github.com/dialproto/godial/internal/discover"
	"github.com/dialproto/godial/internal/tui"
	"github.com/dialproto/godial/internal/urls"
)

// Command flags
var (
	deviceLocation string
	scanTimeout    int
	contentType    string
	defaultApp     string
)

// requestTimeout bounds every app-control request issued from the CLI.
const requestTimeout = 10 * time.Second

func init() {
	// Common flags for receiver commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceLocation, "device", "", "Receiver description URL (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&scanTimeout, "timeout", 0, "Discovery window in seconds (0 = configured preference)")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(nicknameCmd)
	rootCmd.AddCommand(receiversCmd)
}

// scanWindow resolves the discovery window from the flag or the saved
// preference.
func scanWindow() time.Duration {
	if scanTimeout > 0 {
		return time.Duration(scanTimeout) * time.Second
	}
	if registry, err := config.LoadRegistry(); err == nil && registry.Preferences.DiscoverTimeout > 0 {
		return time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
	}
	return 5 * time.Second
}

// scanCmd discovers receivers on the network
var scanCmd = &cobra.Command{
	Use:     "scan",
	Aliases: []string{"discover"},
	Short:   "Scan for DIAL receivers on the network",
	Long: `Scan for DIAL receivers using SSDP discovery.

This command multicasts DIAL search requests, listens for responses and
unsolicited announcements, and fetches each responder's description
document. Discovered receivers are remembered in the local registry so
nicknames and defaults survive across runs.

The discovery mechanics are described in the UPnP Device Architecture:
` + urls.UPnPDeviceArchitecture,
	Example: `  # Scan with the configured window (default 5 seconds)
  dial-controller scan

  # Quick 3-second scan
  dial-controller scan --timeout 3

  # Longer scan for slow networks
  dial-controller scan --timeout 15`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	window := scanWindow()
	fmt.Printf("Scanning for DIAL receivers (window: %s)...\n\n", window)

	records, err := discover.ScanOnce(window)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No receivers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the receiver is powered on")
		fmt.Println("  - Check that you are on the same network segment")
		fmt.Println("  - Verify multicast traffic is not blocked")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --device flag to specify a description URL manually")
		return nil
	}

	registry, regErr := config.LoadRegistry()

	fmt.Printf("Found %d receiver(s):\n\n", len(records))

	for i, rec := range records {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		remote, err := controller.FetchDevice(ctx, rec.Location)
		cancel()
		if err != nil {
			fmt.Printf("%d. %s\n", i+1, rec.Location)
			fmt.Printf("   (description fetch failed: %v)\n\n", err)
			continue
		}

		name := remote.Device.FriendlyName
		if regErr == nil {
			entry := registry.Touch(remote.Device.UDN(), remote.Device.FriendlyName, rec.Location)
			if display := entry.DisplayName(); display != "" {
				name = display
			}
		}

		fmt.Printf("%d. %s\n", i+1, name)
		fmt.Printf("   UUID:     %s\n", remote.Device.UUID)
		fmt.Printf("   Location: %s\n", rec.Location)
		fmt.Printf("   Apps URL: %s\n", remote.Device.ApplicationURL)
		fmt.Println()
	}

	if regErr == nil {
		if err := registry.Save(); err != nil {
			fmt.Printf("Warning: could not save receiver registry: %v\n\n", err)
		}
	}

	fmt.Println("Use 'dial-controller status <app> --device <url>' to query an application")
	fmt.Println("Use 'dial-controller interactive' for the full-screen controller")

	return nil
}

// infoCmd displays a receiver's identity
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show receiver identity",
	Long: `Display the identity of a DIAL receiver.

This command fetches the receiver's UPnP description document and prints
the parsed identity, including the app-control base URL taken from the
Application-URL response header.`,
	Example: `  # Show receiver info with auto-discovery
  dial-controller info

  # Show info for a specific receiver
  dial-controller info --device http://192.168.1.50:8008/ssdp/device-desc.xml`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	remote, err := resolveReceiver()
	if err != nil {
		return err
	}

	fmt.Println(remote.FormatDeviceInfo())
	return nil
}

// statusCmd queries one application's state
var statusCmd = &cobra.Command{
	Use:   "status <app>",
	Short: "Query application status",
	Long: `Query the status of an application hosted on a DIAL receiver.

The receiver reports the application's lifecycle state (stopped, starting,
or running), whether it may be stopped remotely, and the
instance token of the running instance when there is one.`,
	Example: `  # Query with auto-discovery
  dial-controller status YouTube

  # Query a specific receiver
  dial-controller status Netflix --device http://192.168.1.50:8008/ssdp/device-desc.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	remote, err := resolveReceiver()
	if err != nil {
		return err
	}

	name := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	app, err := remote.FetchAppInfo(ctx, name)
	if err != nil {
		if controller.RemoteStatus(err) == 404 {
			return fmt.Errorf("application %q is not hosted on this receiver", name)
		}
		return fmt.Errorf("status query failed: %w", err)
	}

	fmt.Println(controller.FormatAppInfo(app))
	return nil
}

// launchCmd starts an application
var launchCmd = &cobra.Command{
	Use:   "launch <app> [payload]",
	Short: "Launch an application",
	Long: `Launch an application on a DIAL receiver.

An optional payload is delivered to the application as the launch request
body. The receiver answers 201 when a fresh instance starts and 200 when
an already-running instance is relaunched; either way the instance URL, if
reported, is printed so the instance can be stopped later.

Well-known application names are listed in the DIAL registry:
` + urls.DIALRegistry,
	Example: `  # Launch with auto-discovery
  dial-controller launch YouTube

  # Launch with a payload
  dial-controller launch YouTube "v=dQw4w9WgXcQ"

  # Launch with an explicit payload content type
  dial-controller launch MyApp '{"room":"den"}' --content-type application/json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLaunch,
}

func init() {
	launchCmd.Flags().StringVar(&contentType, "content-type", "", "Payload content type (default text/plain)")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	remote, err := resolveReceiver()
	if err != nil {
		return err
	}

	name := args[0]
	payload := ""
	if len(args) >= 2 {
		payload = args[1]
	}

	fmt.Printf("Launching %s on %s...\n", name, remote.Summary())

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	instance, err := remote.Launch(ctx, name, payload, contentType)
	if err != nil {
		if controller.RemoteStatus(err) == 404 {
			return fmt.Errorf("application %q is not hosted on this receiver", name)
		}
		return fmt.Errorf("launch failed: %w", err)
	}

	if instance != "" {
		fmt.Printf("✓ Launched (instance %s)\n", instance)
	} else {
		fmt.Println("✓ Launched")
	}

	return nil
}

// stopCmd stops a running application instance
var stopCmd = &cobra.Command{
	Use:   "stop <app> [pid]",
	Short: "Stop a running application",
	Long: `Stop a running application instance on a DIAL receiver.

When no instance token is given, the receiver is queried first and the
token of the currently running instance is used.`,
	Example: `  # Stop the running instance (token resolved automatically)
  dial-controller stop YouTube

  # Stop a specific instance
  dial-controller stop YouTube run-3`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	remote, err := resolveReceiver()
	if err != nil {
		return err
	}

	name := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	pid := ""
	if len(args) >= 2 {
		pid = args[1]
	} else {
		// Resolve the running instance token from the receiver
		app, err := remote.FetchAppInfo(ctx, name)
		if err != nil {
			if controller.RemoteStatus(err) == 404 {
				return fmt.Errorf("application %q is not hosted on this receiver", name)
			}
			return fmt.Errorf("status query failed: %w", err)
		}
		if app.Pid == "" {
			return fmt.Errorf("application %q has no running instance", name)
		}
		pid = app.Pid
	}

	status, err := remote.Stop(ctx, name, pid)
	if err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}

	switch status {
	case 200:
		fmt.Println("✓ Stopped")
	case 404:
		return fmt.Errorf("application %q is not hosted on this receiver", name)
	case 405:
		return fmt.Errorf("application %q does not allow remote stop", name)
	case 400:
		return fmt.Errorf("instance %q is not running", pid)
	default:
		return fmt.Errorf("receiver refused stop (HTTP %d)", status)
	}

	return nil
}

// interactiveCmd launches the full-screen controller
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive controller",
	Long: `Launch a full-screen terminal UI for receiver control.

The UI provides:
- Receiver discovery over SSDP (with manual URL entry)
- A per-receiver dashboard for status, launch, and stop

This is the recommended way to drive receivers for most users.`,
	Example: `  # Launch with auto-discovery
  dial-controller interactive
  # Or simply (interactive is the default):
  dial-controller

  # Open a specific receiver directly
  dial-controller interactive --device http://192.168.1.50:8008/ssdp/device-desc.xml

  # Pre-select an application
  dial-controller interactive --app YouTube`,
	RunE: runInteractive,
}

func init() {
	interactiveCmd.Flags().StringVar(&defaultApp, "app", "", "Application pre-selected on the dashboard")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if deviceLocation != "" {
		// Direct to dashboard with a manual description URL
		remote, err := fetchReceiver(deviceLocation)
		if err != nil {
			return err
		}

		receiver := &tui.Receiver{
			Record: discover.Record{
				Location:     deviceLocation,
				DiscoveredAt: time.Now(),
			},
			Remote: remote,
		}
		return tui.RunDashboard(receiver, dashboardApp(remote))
	}

	return tui.Run(scanWindow(), defaultApp)
}

// dashboardApp picks the application pre-selected on the dashboard: the
// --app flag when given, otherwise the receiver's saved default.
func dashboardApp(remote *controller.RemoteDevice) string {
	if defaultApp != "" {
		return defaultApp
	}
	if registry, err := config.LoadRegistry(); err == nil {
		if entry := registry.GetReceiver(remote.Device.UDN()); entry != nil {
			return entry.DefaultApp
		}
	}
	return ""
}

// nicknameCmd assigns a nickname or default app to a known receiver
var nicknameCmd = &cobra.Command{
	Use:   "nickname <udn> <name>",
	Short: "Assign a nickname to a known receiver",
	Long: `Assign a nickname to a receiver recorded by a previous scan.

The nickname is shown in place of the advertised friendly name. The
receiver is identified by its UDN as listed by 'dial-controller receivers'.`,
	Example: `  # Nickname a receiver
  dial-controller nickname uuid:6bd5eabd-b7c8-4f7c-b2d2-9337962ca2a7 tv

  # Also set the default application opened on its dashboard
  dial-controller nickname uuid:6bd5eabd-b7c8-4f7c-b2d2-9337962ca2a7 tv --app YouTube`,
	Args: cobra.ExactArgs(2),
	RunE: runNickname,
}

func init() {
	nicknameCmd.Flags().StringVar(&defaultApp, "app", "", "Default application for this receiver")
}

func runNickname(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	udn := args[0]
	entry := registry.GetReceiver(udn)
	if entry == nil {
		return fmt.Errorf("no receiver with UDN %q; run 'dial-controller scan' first", udn)
	}

	entry.Nickname = args[1]
	if defaultApp != "" {
		entry.DefaultApp = defaultApp
	}

	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Printf("✓ %s is now %q\n", udn, entry.Nickname)
	return nil
}

// receiversCmd lists receivers recorded by previous scans
var receiversCmd = &cobra.Command{
	Use:   "receivers",
	Short: "List known receivers",
	Long:  `List receivers recorded in the local registry by previous scans.`,
	RunE:  runReceivers,
}

func runReceivers(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(registry.Receivers) == 0 {
		fmt.Println("No known receivers. Run 'dial-controller scan' first.")
		return nil
	}

	for udn, entry := range registry.Receivers {
		fmt.Printf("%s\n", entry.DisplayName())
		fmt.Printf("  UDN:       %s\n", udn)
		fmt.Printf("  Location:  %s\n", entry.LastLocation)
		if entry.DefaultApp != "" {
			fmt.Printf("  Default:   %s\n", entry.DefaultApp)
		}
		if !entry.LastSeen.IsZero() {
			fmt.Printf("  Last seen: %s\n", entry.LastSeen.Format(time.RFC3339))
		}
		fmt.Println()
	}

	return nil
}

// fetchReceiver fetches and parses the description at the given URL.
func fetchReceiver(location string) (*controller.RemoteDevice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	remote, err := controller.FetchDevice(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch description from %s: %w", location, err)
	}
	return remote, nil
}

// resolveReceiver resolves the target receiver: the --device flag when
// given, otherwise a discovery sweep that must find exactly one receiver.
func resolveReceiver() (*controller.RemoteDevice, error) {
	if deviceLocation != "" {
		return fetchReceiver(deviceLocation)
	}

	// Try discovery
	fmt.Println("No receiver specified, attempting auto-discovery...")
	records, err := discover.ScanOnce(scanWindow())
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no receivers found. Use --device flag to specify a description URL manually")
	}

	if len(records) > 1 {
		fmt.Printf("Found %d receivers:\n", len(records))
		for i, rec := range records {
			fmt.Printf("%d. %s\n", i+1, rec.Location)
		}
		return nil, fmt.Errorf("multiple receivers found. Use --device flag to specify which one")
	}

	// Exactly one receiver found
	remote, err := fetchReceiver(records[0].Location)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Found receiver: %s\n\n", remote.Summary())

	// Remember it for nicknames and defaults
	if registry, regErr := config.LoadRegistry(); regErr == nil {
		registry.Touch(remote.Device.UDN(), remote.Device.FriendlyName, records[0].Location)
		if err := registry.Save(); err != nil {
			fmt.Printf("Warning: could not save receiver registry: %v\n", err)
		}
	}

	return remote, nil
}
