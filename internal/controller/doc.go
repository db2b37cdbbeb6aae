// Package controller implements the controller side of DIAL app control:
// fetching a discovered receiver's description document and driving the
// launch / query / stop lifecycle of its applications over HTTP.
//
// Outbound failures surface as typed *DeviceError values: transport errors
// for network-level failures, remote errors carrying the receiver's status
// for protocol-level rejections, and parse errors for malformed documents.
// The package applies no timeouts or retries of its own; callers needing
// bounded latency wrap calls with a context deadline.
package controller
