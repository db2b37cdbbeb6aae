// Package advertise implements the receiver side of the DIAL protocol: it
// makes exactly one device discoverable under the five fixed SSDP service
// types and serves the device's description and app-control HTTP surface.
//
// The package owns no application state. Every app existence check, launch
// and stop is delegated to an AppProvider; the service enforces the HTTP
// status-code contract around those hooks and nothing else.
//
// Lifecycle: Start arms the discovery transport and announces presence once
// the transport reports ready. Stop withdraws all five advertisements and
// closes the transport only after every withdrawal has been acknowledged.
package advertise
