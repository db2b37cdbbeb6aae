package controller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dialproto/godial/internal/dial"
)

// Summary returns a one-line summary of the receiver
func (d *RemoteDevice) Summary() string {
	return fmt.Sprintf("%s (%s %s) @ %s",
		d.Device.FriendlyName, d.Device.Manufacturer, d.Device.ModelName,
		d.Device.DescriptionURL)
}

// FormatDeviceInfo returns a formatted string with receiver identification
func (d *RemoteDevice) FormatDeviceInfo() string {
	var b strings.Builder

	b.WriteString("=== Receiver Information ===\n")
	b.WriteString(fmt.Sprintf("Friendly Name:   %s\n", d.Device.FriendlyName))
	b.WriteString(fmt.Sprintf("Manufacturer:    %s\n", d.Device.Manufacturer))
	b.WriteString(fmt.Sprintf("Model:           %s\n", d.Device.ModelName))
	b.WriteString(fmt.Sprintf("UDN:             %s\n", d.Device.UDN()))
	b.WriteString(fmt.Sprintf("Description URL: %s\n", d.Device.DescriptionURL))
	b.WriteString(fmt.Sprintf("Application URL: %s\n", d.Device.ApplicationURL))

	return b.String()
}

// FormatAppInfo returns a formatted string for one app record
func FormatAppInfo(app *dial.App) string {
	var b strings.Builder

	b.WriteString("=== Application ===\n")
	b.WriteString(fmt.Sprintf("Name:       %s\n", app.Name))
	b.WriteString(fmt.Sprintf("State:      %s\n", app.InferredState()))
	if app.Pid != "" {
		b.WriteString(fmt.Sprintf("Pid:        %s\n", app.Pid))
	}
	b.WriteString(fmt.Sprintf("Stoppable:  %v\n", app.AllowStop))

	if len(app.AdditionalData) > 0 {
		b.WriteString("\n=== Additional Data ===\n")
		for _, key := range sortedKeys(app.AdditionalData) {
			b.WriteString(fmt.Sprintf("%s: %s\n", key, app.AdditionalData[key]))
		}
	}

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic output keeps CLI snapshots stable.
	sort.Strings(keys)
	return keys
}
