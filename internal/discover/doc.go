// Package discover implements the controller side of DIAL discovery: it
// watches the SSDP transport for receivers advertising the DIAL device or
// service type and maintains the live set of their description locations.
//
// The set is keyed by location URL, so repeated advertisements for one
// receiver collapse into a single "found" event, and a matching byebye
// produces exactly one "disappear" carrying the headers stored at discovery
// time. Records are created and removed purely by transport events; nothing
// is persisted across runs.
package discover
