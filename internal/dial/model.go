package dial

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Icon describes one entry of a device's icon list.
type Icon struct {
	MimeType string
	Width    int
	Height   int
	Depth    int
	URL      string
}

// Device is the identity of a DIAL receiver. It is built once, either from
// local configuration on the receiver side or from a parsed description
// document on the controller side, and is not mutated afterwards.
type Device struct {
	// UUID is the stable unique id without the "uuid:" prefix
	// (e.g. "0ee20f4a-8714-4979-86bd-5c5735a6b82e").
	UUID string

	// FriendlyName is the human-readable name shown by controllers.
	FriendlyName string

	Manufacturer string
	ModelName    string

	// DescriptionURL is where the device-description document is served.
	DescriptionURL string

	// ApplicationURL is the base URL for app control, without a trailing slash.
	// App operations are issued against {ApplicationURL}/{appName}.
	ApplicationURL string

	// Icons is the ordered icon list. May be empty.
	Icons []Icon
}

// UDN returns the device's unique device name ("uuid:{id}").
func (d Device) UDN() string {
	return "uuid:" + d.UUID
}

// NewUUID returns a fresh device id for receivers whose configuration does
// not pin one.
func NewUUID() string {
	return uuid.NewString()
}

// AppState is the lifecycle state of a hosted application.
type AppState string

const (
	AppStopped  AppState = "stopped"
	AppStarting AppState = "starting"
	AppRunning  AppState = "running"
)

// App is one named application hosted by a receiver. The receiver core never
// owns this record; it is produced by the app provider's get hook and the
// core only reads it.
type App struct {
	Name string

	// State is the explicit lifecycle state. When empty, callers must use
	// InferredState.
	State AppState

	// Pid is the opaque correlation token for a launched instance. It is
	// non-empty iff the app is not stopped. It is not an OS process id.
	Pid string

	// AllowStop reports whether DELETE-based stop is permitted for this app.
	AllowStop bool

	// AdditionalData carries protocol-extension key/value pairs rendered as
	// one XML element per entry inside <additionalData>.
	AdditionalData map[string]string

	// Namespaces maps XML namespace prefixes to URIs declared on the root
	// element of the app-description document.
	Namespaces map[string]string
}

// InferredState resolves the app's effective state: the explicit state when
// present, otherwise "running" if a pid is set and "stopped" if not.
func (a App) InferredState() AppState {
	if a.State != "" {
		return a.State
	}
	if a.Pid != "" {
		return AppRunning
	}
	return AppStopped
}

// Running reports whether the app's effective state is "running".
func (a App) Running() bool {
	return a.InferredState() == AppRunning
}

// String returns a one-line summary of the app record.
func (a App) String() string {
	if a.Pid == "" {
		return fmt.Sprintf("%s (%s)", a.Name, a.InferredState())
	}
	return fmt.Sprintf("%s (%s, pid %s)", a.Name, a.InferredState(), a.Pid)
}

// MergeHeaders returns base with every absent key filled from defaults.
// Existing values in base always win. Neither input map is modified.
func MergeHeaders(base, defaults map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range base {
		merged[k] = v
	}
	return merged
}

// StripTrailingSlash normalizes a base URL so paths can be joined with a
// plain "/".
func StripTrailingSlash(u string) string {
	return strings.TrimSuffix(u, "/")
}
