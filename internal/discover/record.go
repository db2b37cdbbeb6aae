package discover

import (
	"fmt"
	"time"

	"github.com/dialproto/godial/internal/ssdp"
)

// Record is the last-seen advertisement for one discovered receiver, keyed
// by its description location. Records are replaced or removed, never
// mutated in place.
type Record struct {
	// Location is the URL of the receiver's device-description document.
	Location string

	// Type is the advertised service type that matched.
	Type string

	// USN is the advertisement's unique-service-name.
	USN string

	// Headers is the raw header set of the advertisement that created the
	// record. It is handed back verbatim on disappear.
	Headers ssdp.Headers

	// DiscoveredAt is when the record was created.
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the record.
func (r Record) String() string {
	return fmt.Sprintf("DIAL receiver at %s (%s)", r.Location, r.Type)
}
