// Package ssdp defines the multicast discovery transport the receiver and
// controller cores are driven by, and provides a real implementation on top
// of github.com/koron/go-ssdp.
//
// The core packages only see the Peer interface and its Events callbacks, so
// unit tests substitute an in-process double and never touch multicast.
// Callbacks are serialized: no two events fire concurrently against the same
// consumer.
package ssdp
