// Package description implements the two XML document shapes of the DIAL
// protocol: the UPnP device description served at the advertised location,
// and the application description returned by app-info queries.
//
// Rendering and parsing are inverses of each other, so a receiver and a
// controller built on this package agree on the wire format byte for byte
// where it matters. App-description parsing strips XML namespace prefixes
// from element and attribute names, so prefixed and unprefixed documents read
// identically.
//
// No other schema is supported. Unknown elements inside <additionalData>
// survive as map entries; unknown elements elsewhere are dropped.
package description
