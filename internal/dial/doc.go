// Package dial holds the core DIAL protocol model shared by the receiver and
// controller sides: the Device identity, the App lifecycle record, the fixed
// set of SSDP service types a receiver advertises, and the header-merge rule
// used when building discovery messages.
//
// Everything here is plain data. Network behaviour lives in the advertise,
// discover and controller packages.
package dial
