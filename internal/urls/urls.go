package urls

// Reference URLs surfaced in CLI help text and error hints.

// DIALProtocol is the home of the Discovery-And-Launch protocol
// specification maintained by Netflix.
const DIALProtocol = "http://www.dial-multiscreen.org/"

// DIALRegistry is the registry of well-known DIAL application names.
const DIALRegistry = "http://www.dial-multiscreen.org/dial-registry"

// UPnPDeviceArchitecture documents the SSDP discovery mechanics DIAL
// builds on (advertisement, search, withdrawal).
const UPnPDeviceArchitecture = "https://openconnectivity.org/developer/specifications/upnp-resources/upnp/"
