package ssdp

import (
	"net"
)

// Headers is the header set of one SSDP message, flattened to single values.
// Keys use the canonical upper-case SSDP spelling (NT, USN, LOCATION, ...).
type Headers map[string]string

// Standard SSDP header names.
const (
	HeaderNT       = "NT"
	HeaderNTS      = "NTS"
	HeaderST       = "ST"
	HeaderUSN      = "USN"
	HeaderLocation = "LOCATION"
	HeaderServer   = "SERVER"
	HeaderConfigID = "CONFIGID.UPNP.ORG"
	HeaderBootID   = "BOOTID.UPNP.ORG"
)

// NTS values carried by notify messages.
const (
	NTSAlive  = "ssdp:alive"
	NTSByeBye = "ssdp:byebye"
)

// SearchRequest is a directed M-SEARCH received from a controller.
type SearchRequest struct {
	// Target is the requested service type (the ST header).
	Target string

	// From is the requester's address; replies go back unicast.
	From net.Addr

	Headers Headers
}

// Notification is a multicast NOTIFY observed on the network.
type Notification struct {
	// Type is the announced service type (the NT header).
	Type string

	// SubType distinguishes presence from withdrawal: NTSAlive or NTSByeBye.
	SubType string

	USN      string
	Location string
	Headers  Headers
}

// Service is one response to a directed search.
type Service struct {
	Type     string
	USN      string
	Location string
	Server   string
	Headers  Headers
}

// Events receives transport callbacks. Unset fields are simply not called.
// The transport serializes invocations.
type Events struct {
	// Ready fires once the transport is armed and listening.
	Ready func()

	// Search fires for every M-SEARCH observed, regardless of target; the
	// consumer filters.
	Search func(SearchRequest)

	// Found fires once per response to a Search call.
	Found func(Service)

	// Notify fires for every NOTIFY observed (alive and byebye).
	Notify func(Notification)

	// Closed fires after Close completes. No events follow it.
	Closed func()
}

// Peer is the discovery transport collaborator. Implementations own the
// sockets; consumers own the protocol semantics.
type Peer interface {
	// Start arms the transport and begins delivering events.
	Start(ev Events) error

	// Close tears the transport down. Pending callbacks are flushed before
	// Events.Closed fires.
	Close() error

	// Search issues a directed discovery for one service type. Responses
	// arrive as Found events.
	Search(target string) error

	// Alive multicasts one presence announcement.
	Alive(h Headers) error

	// ByeBye multicasts one withdrawal and invokes done exactly once when
	// the message has been handed to the network (or failed).
	ByeBye(h Headers, done func(error))

	// Reply sends a unicast search response to the given requester.
	Reply(h Headers, to net.Addr) error
}
