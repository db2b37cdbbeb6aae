package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for known DIAL receivers and controller
// preferences. It is bookkeeping for the CLIs only; the discovery set itself
// is never persisted.
type Registry struct {
	Version     int                  `yaml:"version"`
	Receivers   map[string]*Receiver `yaml:"receivers,omitempty"` // Keyed by receiver UDN
	Preferences *Preferences         `yaml:"preferences,omitempty"`
}

// Receiver represents user-defined metadata for a single DIAL receiver.
// This is keyed by the receiver's UDN in the Registry.
type Receiver struct {
	Nickname     string    `yaml:"nickname,omitempty"`      // User-friendly name
	FriendlyName string    `yaml:"friendly_name,omitempty"` // Name from the last fetched description
	LastLocation string    `yaml:"last_location,omitempty"` // Last known description URL
	LastSeen     time.Time `yaml:"last_seen,omitempty"`     // Last discovery/control time
	DefaultApp   string    `yaml:"default_app,omitempty"`   // App name used when none is given
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeout int `yaml:"discover_timeout"` // Discovery search window in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:   1,
		Receivers: make(map[string]*Receiver),
		Preferences: &Preferences{
			DiscoverTimeout: 5,
		},
	}
}

// GetReceiver retrieves receiver metadata by UDN.
// Returns nil if the receiver doesn't exist in the registry.
func (r *Registry) GetReceiver(udn string) *Receiver {
	return r.Receivers[udn]
}

// EnsureReceiver ensures a receiver entry exists in the registry.
// If it doesn't, a new entry with default values is created.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureReceiver(udn string) *Receiver {
	if r.Receivers == nil {
		r.Receivers = make(map[string]*Receiver)
	}

	if receiver, exists := r.Receivers[udn]; exists {
		return receiver
	}

	receiver := &Receiver{}
	r.Receivers[udn] = receiver
	return receiver
}

// Touch records that a receiver was seen at the given location now.
func (r *Registry) Touch(udn, friendlyName, location string) *Receiver {
	receiver := r.EnsureReceiver(udn)
	receiver.FriendlyName = friendlyName
	receiver.LastLocation = location
	receiver.LastSeen = time.Now()
	return receiver
}

// DisplayName returns the nickname when set, otherwise the friendly name.
func (rc *Receiver) DisplayName() string {
	if rc.Nickname != "" {
		return rc.Nickname
	}
	return rc.FriendlyName
}
