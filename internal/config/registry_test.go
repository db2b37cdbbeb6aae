package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry.Version != 1 {
		t.Errorf("Version = %d, want 1", registry.Version)
	}
	if registry.Receivers == nil {
		t.Error("Receivers map not initialized")
	}
	if registry.Preferences == nil {
		t.Fatal("Preferences not initialized")
	}
	if registry.Preferences.DiscoverTimeout != 5 {
		t.Errorf("DiscoverTimeout = %d, want 5", registry.Preferences.DiscoverTimeout)
	}
}

func TestEnsureReceiver(t *testing.T) {
	registry := NewRegistry()

	first := registry.EnsureReceiver("device-uuid-1234")
	if first == nil {
		t.Fatal("EnsureReceiver returned nil")
	}

	second := registry.EnsureReceiver("device-uuid-1234")
	if first != second {
		t.Error("EnsureReceiver created a new entry for an existing UDN")
	}

	if registry.GetReceiver("unknown") != nil {
		t.Error("GetReceiver returned an entry for an unknown UDN")
	}
}

func TestTouch(t *testing.T) {
	registry := NewRegistry()

	before := time.Now()
	receiver := registry.Touch("device-uuid-1234", "Living Room TV", "http://192.168.1.50:8008/ssdp/device-desc.xml")

	if receiver.FriendlyName != "Living Room TV" {
		t.Errorf("FriendlyName = %q, want %q", receiver.FriendlyName, "Living Room TV")
	}
	if receiver.LastLocation != "http://192.168.1.50:8008/ssdp/device-desc.xml" {
		t.Errorf("LastLocation = %q", receiver.LastLocation)
	}
	if receiver.LastSeen.Before(before) {
		t.Error("LastSeen not updated")
	}

	// A later touch updates the same entry
	receiver.Nickname = "tv"
	again := registry.Touch("device-uuid-1234", "Living Room TV (renamed)", "http://192.168.1.51:8008/ssdp/device-desc.xml")
	if again.Nickname != "tv" {
		t.Error("Touch dropped user-set nickname")
	}
	if again.FriendlyName != "Living Room TV (renamed)" {
		t.Error("Touch did not update friendly name")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		receiver Receiver
		want     string
	}{
		{
			name:     "nickname preferred",
			receiver: Receiver{Nickname: "tv", FriendlyName: "Living Room TV"},
			want:     "tv",
		},
		{
			name:     "friendly name fallback",
			receiver: Receiver{FriendlyName: "Living Room TV"},
			want:     "Living Room TV",
		},
		{
			name:     "both empty",
			receiver: Receiver{},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.receiver.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	// Redirect config dir into a temp directory
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("LOCALAPPDATA", tmpDir)

	registry := NewRegistry()
	receiver := registry.Touch("device-uuid-1234", "Living Room TV", "http://192.168.1.50:8008/ssdp/device-desc.xml")
	receiver.Nickname = "tv"
	receiver.DefaultApp = "YouTube"
	registry.Preferences.DiscoverTimeout = 10

	if err := registry.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := loadRegistryFromDisk()
	if err != nil {
		t.Fatalf("loadRegistryFromDisk() failed: %v", err)
	}

	if loaded.Version != 1 {
		t.Errorf("Version = %d, want 1", loaded.Version)
	}
	got := loaded.GetReceiver("device-uuid-1234")
	if got == nil {
		t.Fatal("receiver missing after round trip")
	}
	if got.Nickname != "tv" || got.FriendlyName != "Living Room TV" || got.DefaultApp != "YouTube" {
		t.Errorf("receiver fields lost: %+v", got)
	}
	if loaded.Preferences.DiscoverTimeout != 10 {
		t.Errorf("DiscoverTimeout = %d, want 10", loaded.Preferences.DiscoverTimeout)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("LOCALAPPDATA", tmpDir)

	registry, err := loadRegistryFromDisk()
	if err != nil {
		t.Fatalf("loadRegistryFromDisk() failed: %v", err)
	}
	if registry.Version != 1 {
		t.Errorf("Version = %d, want 1", registry.Version)
	}
	if len(registry.Receivers) != 0 {
		t.Errorf("expected empty receiver map, got %d entries", len(registry.Receivers))
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("LOCALAPPDATA", tmpDir)

	configDir := filepath.Join(tmpDir, appName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, configFile), []byte("version: 99\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := loadRegistryFromDisk()
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveWritesHeaderComment(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("LOCALAPPDATA", tmpDir)

	registry := NewRegistry()
	if err := registry.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# godial Configuration File") {
		t.Error("config file missing header comment")
	}
}
