package dial

// The five service types every DIAL receiver advertises. They always share
// one uuid and one location and are announced or withdrawn as a batch.
const (
	// ServiceTypeDial is the DIAL service type searched for by controllers.
	ServiceTypeDial = "urn:dial-multiscreen-org:service:dial:1"

	// DeviceTypeDial is the DIAL device type.
	DeviceTypeDial = "urn:dial-multiscreen-org:device:dial:1"

	// RootDevice is the generic UPnP root-device type.
	RootDevice = "upnp:rootdevice"

	// AllDevices is the wildcard type answered for ssdp:all searches.
	AllDevices = "ssdp:all"
)

// SearchTargets are the device-level types a controller searches for.
var SearchTargets = []string{DeviceTypeDial, ServiceTypeDial}

// ServiceTypes returns the full advertisement batch for a device id, in the
// order announcements are sent. The last entry is the device-specific
// "uuid:{id}" type.
func ServiceTypes(id string) []string {
	return []string{
		ServiceTypeDial,
		DeviceTypeDial,
		RootDevice,
		AllDevices,
		"uuid:" + id,
	}
}

// USN builds the unique-service-name for one advertised type.
func USN(id, serviceType string) string {
	return "uuid:" + id + "::" + serviceType
}

// ServiceAdvertisement is one of the five presence records advertised per
// device.
type ServiceAdvertisement struct {
	Type     string
	USN      string
	Location string
	Server   string

	// Extra carries caller-supplied header fields merged into every
	// announcement and search reply. Existing protocol fields win over
	// extras with the same name.
	Extra map[string]string
}

// Advertisements expands a device into its fixed advertisement batch.
func Advertisements(d Device, server string, extra map[string]string) []ServiceAdvertisement {
	types := ServiceTypes(d.UUID)
	ads := make([]ServiceAdvertisement, 0, len(types))
	for _, st := range types {
		ads = append(ads, ServiceAdvertisement{
			Type:     st,
			USN:      USN(d.UUID, st),
			Location: d.DescriptionURL,
			Server:   server,
			Extra:    extra,
		})
	}
	return ads
}
