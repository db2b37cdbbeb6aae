package discover

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/ssdp"
)

// fakePeer records searches and lets tests inject transport events.
type fakePeer struct {
	ev       ssdp.Events
	started  bool
	closed   bool
	searches []string
}

func (p *fakePeer) Start(ev ssdp.Events) error {
	p.ev = ev
	p.started = true
	if ev.Ready != nil {
		ev.Ready()
	}
	return nil
}

func (p *fakePeer) Close() error {
	p.closed = true
	if p.ev.Closed != nil {
		p.ev.Closed()
	}
	return nil
}

func (p *fakePeer) Search(target string) error {
	p.searches = append(p.searches, target)
	return nil
}

func (p *fakePeer) Alive(h ssdp.Headers) error              { return nil }
func (p *fakePeer) ByeBye(h ssdp.Headers, done func(error)) { done(nil) }
func (p *fakePeer) Reply(h ssdp.Headers, to net.Addr) error { return nil }

type eventLog struct {
	found     []Record
	disappear []Record
	ready     int
}

func newTestClient(t *testing.T, peer *fakePeer) (*Client, *eventLog) {
	t.Helper()
	log := &eventLog{}
	c, err := New(Options{
		Transport:   peer,
		OnReady:     func() { log.ready++ },
		OnFound:     func(r Record) { log.found = append(log.found, r) },
		OnDisappear: func(r Record) { log.disappear = append(log.disappear, r) },
	})
	require.NoError(t, err)
	require.NoError(t, c.Start())
	return c, log
}

func aliveFor(location string) ssdp.Notification {
	return ssdp.Notification{
		Type:     dial.ServiceTypeDial,
		SubType:  ssdp.NTSAlive,
		USN:      "uuid:abc::" + dial.ServiceTypeDial,
		Location: location,
		Headers:  ssdp.Headers{ssdp.HeaderLocation: location, "CACHE-CONTROL": "max-age=1800"},
	}
}

func byebyeFor(location string) ssdp.Notification {
	return ssdp.Notification{
		Type:     dial.ServiceTypeDial,
		SubType:  ssdp.NTSByeBye,
		USN:      "uuid:abc::" + dial.ServiceTypeDial,
		Location: location,
	}
}

func TestStartSearchesBothTargets(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	assert.Equal(t, []string{dial.DeviceTypeDial, dial.ServiceTypeDial}, peer.searches)
	assert.Equal(t, 1, log.ready)
}

func TestFoundIsIdempotentPerLocation(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	loc := "http://192.168.1.10:9200/ssdp/device-desc.xml"

	// Mixed sources for the same location: one search response plus
	// repeated alive notifies.
	peer.ev.Found(ssdp.Service{
		Type:     dial.DeviceTypeDial,
		USN:      "uuid:abc::" + dial.DeviceTypeDial,
		Location: loc,
		Headers:  ssdp.Headers{ssdp.HeaderLocation: loc},
	})
	peer.ev.Notify(aliveFor(loc))
	peer.ev.Notify(aliveFor(loc))

	require.Len(t, log.found, 1, "found must fire at most once per location")
	assert.Equal(t, loc, log.found[0].Location)
}

func TestFoundIgnoresUnmatchedTypes(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	n := aliveFor("http://192.168.1.20:8008/desc.xml")
	n.Type = "urn:schemas-upnp-org:device:MediaRenderer:1"
	peer.ev.Notify(n)

	assert.Empty(t, log.found)
}

func TestDisappearReturnsStoredHeaders(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	loc := "http://192.168.1.10:9200/ssdp/device-desc.xml"
	peer.ev.Notify(aliveFor(loc))
	peer.ev.Notify(byebyeFor(loc))

	require.Len(t, log.disappear, 1)
	assert.Equal(t, loc, log.disappear[0].Location)
	assert.Equal(t, "max-age=1800", log.disappear[0].Headers["CACHE-CONTROL"],
		"disappear must carry the headers stored at discovery time")
}

func TestByebyeWithoutLocationMatchesByUSN(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	loc := "http://192.168.1.10:9200/ssdp/device-desc.xml"
	peer.ev.Notify(aliveFor(loc))

	bye := byebyeFor("")
	peer.ev.Notify(bye)

	require.Len(t, log.disappear, 1)
	assert.Equal(t, loc, log.disappear[0].Location)
}

func TestDisappearNeverFiresForUntrackedLocation(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	peer.ev.Notify(byebyeFor("http://192.168.1.99:9200/desc.xml"))
	assert.Empty(t, log.disappear)

	// Found then disappear then a second byebye: only one event.
	loc := "http://192.168.1.10:9200/ssdp/device-desc.xml"
	peer.ev.Notify(aliveFor(loc))
	peer.ev.Notify(byebyeFor(loc))
	peer.ev.Notify(byebyeFor(loc))
	assert.Len(t, log.disappear, 1)
}

func TestFoundAgainAfterDisappear(t *testing.T) {
	peer := &fakePeer{}
	_, log := newTestClient(t, peer)

	loc := "http://192.168.1.10:9200/ssdp/device-desc.xml"
	peer.ev.Notify(aliveFor(loc))
	peer.ev.Notify(byebyeFor(loc))
	peer.ev.Notify(aliveFor(loc))

	assert.Len(t, log.found, 2, "a location may be rediscovered after withdrawal")
}

func TestRefreshClearsRecordsWithoutDisappear(t *testing.T) {
	peer := &fakePeer{}
	c, log := newTestClient(t, peer)

	loc := "http://192.168.1.10:9200/ssdp/device-desc.xml"
	peer.ev.Notify(aliveFor(loc))
	require.Len(t, c.Records(), 1)

	searchesBefore := len(peer.searches)
	c.Refresh()

	assert.Empty(t, c.Records(), "refresh clears all records")
	assert.Empty(t, log.disappear, "refresh must not emit disappear")
	assert.Equal(t, searchesBefore+2, len(peer.searches), "refresh re-issues both searches")

	// The cleared location can be found again.
	peer.ev.Notify(aliveFor(loc))
	assert.Len(t, log.found, 2)
}

func TestReadyFiresOnceAcrossRefresh(t *testing.T) {
	peer := &fakePeer{}
	c, log := newTestClient(t, peer)

	require.Equal(t, 1, log.ready)

	c.Refresh()
	c.Refresh()

	assert.Equal(t, 1, log.ready, "refresh must not re-signal ready")
}

func TestStopClosesTransport(t *testing.T) {
	peer := &fakePeer{}
	c, _ := newTestClient(t, peer)

	require.NoError(t, c.Stop())
	assert.True(t, peer.closed)
}
