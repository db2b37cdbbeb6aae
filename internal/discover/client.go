package discover

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/logging"
	"github.com/dialproto/godial/internal/ssdp"
)

// Options configures a discovery client.
type Options struct {
	// Transport is the discovery peer. Required.
	Transport ssdp.Peer

	// Targets overrides the searched service types. Defaults to the DIAL
	// device and service types.
	Targets []string

	// OnReady fires after the initial searches have been issued.
	OnReady func()

	// OnFound fires once per newly recorded location.
	OnFound func(Record)

	// OnDisappear fires when a recorded location withdraws, carrying the
	// record stored at discovery time.
	OnDisappear func(Record)
}

// Client tracks appearance and disappearance of matching DIAL
// advertisements. All record mutation happens in transport-callback context,
// which the transport serializes, so the client needs no locking.
type Client struct {
	transport ssdp.Peer
	targets   []string
	types     map[string]bool

	onReady     func()
	onFound     func(Record)
	onDisappear func(Record)

	// records is the live location set. At most one record per location.
	records map[string]Record
}

// New builds a client over the given transport.
func New(opts Options) (*Client, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("discover: no transport configured")
	}

	targets := opts.Targets
	if len(targets) == 0 {
		targets = dial.SearchTargets
	}

	c := &Client{
		transport:   opts.Transport,
		targets:     targets,
		types:       make(map[string]bool, len(targets)),
		onReady:     opts.OnReady,
		onFound:     opts.OnFound,
		onDisappear: opts.OnDisappear,
		records:     make(map[string]Record),
	}
	for _, st := range targets {
		c.types[st] = true
	}
	return c, nil
}

// Start arms the transport. Once it reports ready, one search per target is
// issued and OnReady fires.
func (c *Client) Start() error {
	return c.transport.Start(ssdp.Events{
		Ready:  c.handleReady,
		Found:  c.handleFound,
		Notify: c.handleNotify,
	})
}

// Stop closes the transport. No events fire afterward.
func (c *Client) Stop() error {
	return c.transport.Close()
}

// Refresh clears every recorded location and re-issues the searches. It does
// not emit disappear events for the cleared records; callers must not assume
// stale entries are explicitly retracted.
func (c *Client) Refresh() {
	c.records = make(map[string]Record)
	c.searchAll()
}

// Records returns a snapshot of the currently tracked receivers.
func (c *Client) Records() []Record {
	out := make([]Record, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	return out
}

// handleReady runs the initial searches and signals readiness exactly once,
// when the transport comes up. Refresh re-runs the searches without it.
func (c *Client) handleReady() {
	c.searchAll()
	if c.onReady != nil {
		c.onReady()
	}
}

func (c *Client) searchAll() {
	for _, st := range c.targets {
		if err := c.transport.Search(st); err != nil {
			logging.Warn("Discovery search failed",
				zap.String("target", st),
				zap.Error(err),
			)
		}
	}
}

// handleFound records a search response. Repeated advertisements for a known
// location are no-ops.
func (c *Client) handleFound(svc ssdp.Service) {
	c.record(svc.Type, svc.USN, svc.Location, svc.Headers)
}

// handleNotify treats an alive notify like a search response and a byebye as
// a withdrawal. Byebye for an unknown location or unmatched type is ignored.
func (c *Client) handleNotify(n ssdp.Notification) {
	switch n.SubType {
	case ssdp.NTSAlive:
		c.record(n.Type, n.USN, n.Location, n.Headers)
	case ssdp.NTSByeBye:
		if !c.types[n.Type] {
			return
		}
		location := n.Location
		if location == "" {
			// Byebye messages carry no location; find the record
			// by USN instead.
			location = c.locationForUSN(n.USN)
		}
		rec, ok := c.records[location]
		if !ok {
			return
		}
		delete(c.records, location)
		logging.Info("Receiver disappeared", zap.String("location", rec.Location))
		if c.onDisappear != nil {
			c.onDisappear(rec)
		}
	}
}

func (c *Client) record(serviceType, usn, location string, headers ssdp.Headers) {
	if !c.types[serviceType] || location == "" {
		return
	}
	if _, known := c.records[location]; known {
		return
	}

	rec := Record{
		Location:     location,
		Type:         serviceType,
		USN:          usn,
		Headers:      headers,
		DiscoveredAt: time.Now(),
	}
	c.records[location] = rec
	logging.Info("Receiver found",
		zap.String("location", location),
		zap.String("type", serviceType),
	)
	if c.onFound != nil {
		c.onFound(rec)
	}
}

func (c *Client) locationForUSN(usn string) string {
	if usn == "" {
		return ""
	}
	for location, rec := range c.records {
		if rec.USN == usn {
			return location
		}
	}
	return ""
}
