// Dial-receiver is a reference DIAL receiver for the local network.
//
// It advertises itself over SSDP multicast, serves its UPnP description
// document, and hosts an in-memory application registry behind the DIAL
// app-control endpoints so controllers can query, launch, and stop the
// hosted applications.
//
// Usage:
//
//	dial-receiver serve [flags]
//
// See 'dial-receiver serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/advertise"
	"github.com/dialproto/godial/internal/apps"
	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/logging"
	"github.com/dialproto/godial/internal/ssdp"
	"github.com/dialproto/godial/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dial-receiver",
	Short: "DIAL Receiver",
	Long: `A standalone DIAL receiver for the local network.

The receiver advertises itself over SSDP multicast and serves the DIAL
app-control endpoints backed by an in-memory application registry.

Note: For driving receivers, use the separate 'dial-controller' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	friendlyName string
	manufacturer string
	modelName    string
	deviceUUID   string
	host         string
	port         int
	hostedApps   []string
	allowStop    bool
	maxPayload   int
	routePrefix  string
	logLevel     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the DIAL receiver",
	Long: `Start the DIAL receiver.

The receiver binds an HTTP listener for the description document and the
app-control endpoints, then announces its presence over SSDP multicast.
Each --app flag hosts one application in the in-memory registry; launching
an application assigns it a fresh instance token.

When no --host is given, the outward-facing interface address is detected
automatically and used in the advertised URLs.`,
	Example: `  # Host YouTube and Netflix on the default port
  dial-receiver serve --app YouTube --app Netflix

  # Custom identity and port
  dial-receiver serve --name "Den TV" --port 9010 --app YouTube

  # Pin the device UUID so controllers see a stable identity
  dial-receiver serve --uuid 0ee20f4a-8714-4979-86bd-5c5735a6b82e --app YouTube

  # Refuse remote stop requests
  dial-receiver serve --app YouTube --allow-stop=false`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&friendlyName, "name", "godial Receiver", "Advertised friendly name")
	serveCmd.Flags().StringVar(&manufacturer, "manufacturer", "godial", "Advertised manufacturer")
	serveCmd.Flags().StringVar(&modelName, "model", "godial/1.0", "Advertised model name")
	serveCmd.Flags().StringVar(&deviceUUID, "uuid", "", "Device UUID (random if not provided)")
	serveCmd.Flags().StringVar(&host, "host", "", "Address to advertise and bind (empty = auto-detect)")
	serveCmd.Flags().IntVar(&port, "port", 8008, "HTTP port for description and app control")
	serveCmd.Flags().StringArrayVar(&hostedApps, "app", nil, "Application to host (repeatable)")
	serveCmd.Flags().BoolVar(&allowStop, "allow-stop", true, "Allow controllers to stop hosted applications")
	serveCmd.Flags().IntVar(&maxPayload, "max-payload", advertise.DefaultMaxPayloadBytes, "Request body cap in bytes")
	serveCmd.Flags().StringVar(&routePrefix, "prefix", "", "Route prefix for all HTTP endpoints")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	if len(hostedApps) == 0 {
		return fmt.Errorf("at least one --app must be hosted")
	}

	addr := host
	if addr == "" {
		detected, err := outboundIP()
		if err != nil {
			return fmt.Errorf("could not detect local address (use --host): %w", err)
		}
		addr = detected
	}

	id := deviceUUID
	if id == "" {
		id = dial.NewUUID()
	}

	base := fmt.Sprintf("http://%s:%d%s", addr, port, routePrefix)
	device := dial.Device{
		UUID:           id,
		FriendlyName:   friendlyName,
		Manufacturer:   manufacturer,
		ModelName:      modelName,
		DescriptionURL: base + "/ssdp/device-desc.xml",
		ApplicationURL: base + "/apps",
	}

	entries := make([]apps.Entry, 0, len(hostedApps))
	for _, name := range hostedApps {
		entries = append(entries, apps.Entry{
			Name:      name,
			AllowStop: allowStop,
		})
	}
	provider := apps.NewRegistry(entries...)

	service, err := advertise.New(advertise.Options{
		Device:          device,
		Transport:       ssdp.NewGoSSDP(ssdp.GoSSDPConfig{LocalAddr: addr}),
		Provider:        provider,
		MaxPayloadBytes: maxPayload,
		RoutePrefix:     routePrefix,
		OnReady: func() {
			logging.Info("receiver announced",
				zap.String("friendly_name", friendlyName),
				zap.String("udn", device.UDN()))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create receiver: %w", err)
	}

	// Bind the HTTP surface before announcing; controllers may fetch the
	// description the moment the first alive goes out.
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return fmt.Errorf("failed to bind %s:%d: %w", addr, port, err)
	}

	httpServer := &http.Server{Handler: service.Handler()}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if err := service.Start(); err != nil {
		httpServer.Close()
		return fmt.Errorf("failed to start advertising: %w", err)
	}

	fmt.Printf("DIAL receiver %q is up\n", friendlyName)
	fmt.Printf("  UDN:         %s\n", device.UDN())
	fmt.Printf("  Description: %s\n", device.DescriptionURL)
	fmt.Printf("  Apps URL:    %s\n", device.ApplicationURL)
	for _, name := range hostedApps {
		fmt.Printf("  Hosting:     %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop.")

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-serveErr:
		logging.Error("http server failed", zap.Error(err))
		service.Stop()
		return fmt.Errorf("http server failed: %w", err)
	}

	// Withdraw the advertisements first so controllers see the byebyes
	// while the endpoints are still reachable.
	if err := service.Stop(); err != nil {
		logging.Warn("advertisement withdrawal failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	fmt.Println("Receiver stopped.")
	return nil
}

// outboundIP detects the interface address used for outbound traffic. No
// packets are sent; the kernel just resolves the route.
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "203.0.113.1:9")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}
	return local.IP.String(), nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dial-receiver %s (commit: %s)\n", version.Version, version.Commit)
	},
}
