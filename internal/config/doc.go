// Package config manages persistent controller configuration.
//
// It stores a registry of known DIAL receivers (keyed by device UDN) with
// user-assigned nicknames, last known description URLs, and per-receiver
// defaults, plus controller-wide preferences. The registry is persisted as
// YAML under the platform config directory (XDG on Linux, %LOCALAPPDATA% on
// Windows) and written atomically via a temp file and rename.
package config
