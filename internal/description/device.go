package description

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dialproto/godial/internal/dial"
)

// Schema constants for the device-description document.
const (
	deviceNamespace = "urn:schemas-upnp-org:device-1-0"
	dialServiceID   = "urn:dial-multiscreen-org:serviceId:dial"

	// placeholderURL fills the UPnP service-control URLs. DIAL receivers
	// expose no additional UPnP services, but the schema requires the block.
	placeholderURL = "/ssdp/notfound"
)

type specVersion struct {
	Major int `xml:"major"`
	Minor int `xml:"minor"`
}

type deviceIcon struct {
	MimeType string `xml:"mimetype"`
	Width    int    `xml:"width"`
	Height   int    `xml:"height"`
	Depth    int    `xml:"depth"`
	URL      string `xml:"url"`
}

type deviceService struct {
	ServiceType string `xml:"serviceType"`
	ServiceID   string `xml:"serviceId"`
	ControlURL  string `xml:"controlURL"`
	EventSubURL string `xml:"eventSubURL"`
	SCPDURL     string `xml:"SCPDURL"`
}

type deviceElement struct {
	DeviceType   string          `xml:"deviceType"`
	FriendlyName string          `xml:"friendlyName"`
	Manufacturer string          `xml:"manufacturer"`
	ModelName    string          `xml:"modelName"`
	UDN          string          `xml:"UDN"`
	Icons        []deviceIcon    `xml:"iconList>icon"`
	Services     []deviceService `xml:"serviceList>service"`
}

type deviceRoot struct {
	XMLName     xml.Name      `xml:"root"`
	Xmlns       string        `xml:"xmlns,attr"`
	SpecVersion specVersion   `xml:"specVersion"`
	Device      deviceElement `xml:"device"`
}

// RenderDeviceDescription produces the device-description document for a
// device. The schema is fixed: spec version 1.0, the DIAL device type, the
// first icon (when one exists) and a placeholder service entry signaling that
// the receiver hosts no additional UPnP services.
func RenderDeviceDescription(d dial.Device) (string, error) {
	root := deviceRoot{
		Xmlns:       deviceNamespace,
		SpecVersion: specVersion{Major: 1, Minor: 0},
		Device: deviceElement{
			DeviceType:   dial.DeviceTypeDial,
			FriendlyName: d.FriendlyName,
			Manufacturer: d.Manufacturer,
			ModelName:    d.ModelName,
			UDN:          d.UDN(),
			Services: []deviceService{{
				ServiceType: dial.ServiceTypeDial,
				ServiceID:   dialServiceID,
				ControlURL:  placeholderURL,
				EventSubURL: placeholderURL,
				SCPDURL:     placeholderURL,
			}},
		},
	}

	if len(d.Icons) > 0 {
		icon := d.Icons[0]
		root.Device.Icons = []deviceIcon{{
			MimeType: icon.MimeType,
			Width:    icon.Width,
			Height:   icon.Height,
			Depth:    icon.Depth,
			URL:      icon.URL,
		}}
	}

	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", &ParseError{Doc: "device description", Err: err}
	}
	return xml.Header + string(body), nil
}

// ParseDeviceDescription is the left inverse of RenderDeviceDescription:
// it recovers the device fields from a description document. The fetch URL
// and application URL are not part of the document and stay empty; callers
// fill them from the HTTP exchange that produced the text.
func ParseDeviceDescription(text string) (dial.Device, error) {
	var root deviceRoot
	if err := xml.Unmarshal([]byte(text), &root); err != nil {
		return dial.Device{}, &ParseError{Doc: "device description", Err: err}
	}
	if root.Device.UDN == "" && root.Device.FriendlyName == "" {
		return dial.Device{}, &ParseError{
			Doc: "device description",
			Err: fmt.Errorf("document has no <device> element"),
		}
	}

	dev := dial.Device{
		UUID:         strings.TrimPrefix(root.Device.UDN, "uuid:"),
		FriendlyName: root.Device.FriendlyName,
		Manufacturer: root.Device.Manufacturer,
		ModelName:    root.Device.ModelName,
	}
	for _, icon := range root.Device.Icons {
		dev.Icons = append(dev.Icons, dial.Icon{
			MimeType: icon.MimeType,
			Width:    icon.Width,
			Height:   icon.Height,
			Depth:    icon.Depth,
			URL:      icon.URL,
		})
	}
	return dev, nil
}
