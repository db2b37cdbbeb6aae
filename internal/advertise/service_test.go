package advertise

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/ssdp"
)

// fakePeer is a deterministic in-process transport double. Byebye
// acknowledgments can be held back and released in any order.
type fakePeer struct {
	mu sync.Mutex

	ev      ssdp.Events
	started bool
	closed  bool

	alives   []ssdp.Headers
	replies  []sentReply
	searches []string

	holdAcks bool
	pending  []func(error)
}

type sentReply struct {
	headers ssdp.Headers
	to      net.Addr
}

func (p *fakePeer) Start(ev ssdp.Events) error {
	p.mu.Lock()
	p.ev = ev
	p.started = true
	p.mu.Unlock()
	if ev.Ready != nil {
		ev.Ready()
	}
	return nil
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	p.closed = true
	ev := p.ev
	p.mu.Unlock()
	if ev.Closed != nil {
		ev.Closed()
	}
	return nil
}

func (p *fakePeer) Search(target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches = append(p.searches, target)
	return nil
}

func (p *fakePeer) Alive(h ssdp.Headers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alives = append(p.alives, h)
	return nil
}

func (p *fakePeer) ByeBye(h ssdp.Headers, done func(error)) {
	p.mu.Lock()
	hold := p.holdAcks
	if hold {
		p.pending = append(p.pending, done)
	}
	p.mu.Unlock()
	if !hold {
		done(nil)
	}
}

func (p *fakePeer) Reply(h ssdp.Headers, to net.Addr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, sentReply{headers: h, to: to})
	return nil
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) takePending() []func(error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending := p.pending
	p.pending = nil
	return pending
}

// nopProvider satisfies AppProvider for transport-only tests.
type nopProvider struct{}

func (nopProvider) Get(context.Context, string) *dial.App { return nil }
func (nopProvider) Launch(context.Context, string, []byte) (string, error) {
	return "", nil
}
func (nopProvider) Stop(context.Context, string, string) bool { return false }

func testDevice() dial.Device {
	return dial.Device{
		UUID:           "0ee20f4a",
		FriendlyName:   "Living Room TV",
		Manufacturer:   "Acme",
		ModelName:      "Screen 9000",
		DescriptionURL: "http://192.168.1.10:9200/ssdp/device-desc.xml",
		ApplicationURL: "http://192.168.1.10:9200/apps",
	}
}

func newTestService(t *testing.T, peer *fakePeer, opts Options) *Service {
	t.Helper()
	if opts.Device.UUID == "" {
		opts.Device = testDevice()
	}
	if opts.Transport == nil {
		opts.Transport = peer
	}
	if opts.Provider == nil {
		opts.Provider = nopProvider{}
	}
	svc, err := New(opts)
	require.NoError(t, err)
	return svc
}

func TestStartAnnouncesAllFiveTypes(t *testing.T) {
	peer := &fakePeer{}
	ready := false
	svc := newTestService(t, peer, Options{OnReady: func() { ready = true }})

	require.NoError(t, svc.Start())

	require.Len(t, peer.alives, 5, "one alive per service type")
	require.True(t, ready, "ready must fire after the alive batch")

	seen := make(map[string]bool)
	for _, h := range peer.alives {
		seen[h[ssdp.HeaderNT]] = true
		assert.Equal(t, testDevice().DescriptionURL, h[ssdp.HeaderLocation])
		assert.Equal(t, dial.USN("0ee20f4a", h[ssdp.HeaderNT]), h[ssdp.HeaderUSN])
		assert.NotEmpty(t, h[ssdp.HeaderServer])
	}
	for _, st := range dial.ServiceTypes("0ee20f4a") {
		assert.True(t, seen[st], "missing alive for %s", st)
	}
}

func TestStartMergesExtraHeadersExistingWins(t *testing.T) {
	peer := &fakePeer{}
	svc := newTestService(t, peer, Options{
		Extra: map[string]string{
			"X-Custom":          "1",
			ssdp.HeaderLocation: "http://elsewhere.test/override",
		},
	})

	require.NoError(t, svc.Start())
	require.NotEmpty(t, peer.alives)
	for _, h := range peer.alives {
		assert.Equal(t, "1", h["X-Custom"], "extras fill absent keys")
		assert.Equal(t, testDevice().DescriptionURL, h[ssdp.HeaderLocation],
			"protocol fields win over extras")
	}
}

func TestSearchRepliesOnlyForKnownTypes(t *testing.T) {
	peer := &fakePeer{}
	svc := newTestService(t, peer, Options{})
	require.NoError(t, svc.Start())

	from := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 20), Port: 50000}

	peer.ev.Search(ssdp.SearchRequest{Target: "urn:other-org:service:nope:1", From: from})
	assert.Empty(t, peer.replies, "unknown target must be ignored")

	peer.ev.Search(ssdp.SearchRequest{Target: dial.ServiceTypeDial, From: from})
	require.Len(t, peer.replies, 1)

	reply := peer.replies[0]
	assert.Equal(t, from, reply.to, "replies are directed, never broadcast")
	assert.Equal(t, dial.ServiceTypeDial, reply.headers[ssdp.HeaderST])
	assert.Equal(t, dial.USN("0ee20f4a", dial.ServiceTypeDial), reply.headers[ssdp.HeaderUSN])
	assert.Equal(t, testDevice().DescriptionURL, reply.headers[ssdp.HeaderLocation])
	assert.Equal(t, "7339", reply.headers[ssdp.HeaderConfigID])
	assert.Equal(t, "7339", reply.headers[ssdp.HeaderBootID])
}

func TestSearchRepliesForDeviceSpecificType(t *testing.T) {
	peer := &fakePeer{}
	svc := newTestService(t, peer, Options{})
	require.NoError(t, svc.Start())

	from := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 20), Port: 50000}
	peer.ev.Search(ssdp.SearchRequest{Target: "uuid:0ee20f4a", From: from})

	require.Len(t, peer.replies, 1)
	assert.Equal(t, "uuid:0ee20f4a", peer.replies[0].headers[ssdp.HeaderST])
}

func TestStopWaitsForAllAcknowledgments(t *testing.T) {
	peer := &fakePeer{holdAcks: true}
	stopped := false
	svc := newTestService(t, peer, Options{OnStopped: func() { stopped = true }})
	require.NoError(t, svc.Start())

	done := make(chan error, 1)
	go func() { done <- svc.Stop() }()

	// All five withdrawals go out immediately; acknowledgments are held.
	var pending []func(error)
	require.Eventually(t, func() bool {
		pending = append(pending, peer.takePending()...)
		return len(pending) == 5
	}, time.Second, 5*time.Millisecond, "expected five pending withdrawals")

	// Release acks out of order; the transport must stay open until the
	// last one lands.
	order := []int{3, 0, 4, 1}
	for _, i := range order {
		pending[i](nil)
		select {
		case <-done:
			t.Fatal("Stop() returned before all acknowledgments")
		case <-time.After(10 * time.Millisecond):
		}
		assert.False(t, peer.isClosed(), "transport closed early")
	}

	pending[2](nil)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop() did not return after final acknowledgment")
	}
	assert.True(t, peer.isClosed(), "transport must close after the barrier")
	assert.True(t, stopped, "stopped signal must fire")
}

func TestNewValidatesOptions(t *testing.T) {
	peer := &fakePeer{}

	_, err := New(Options{Provider: nopProvider{}, Device: testDevice()})
	assert.Error(t, err, "missing transport")

	_, err = New(Options{Transport: peer, Device: testDevice()})
	assert.Error(t, err, "missing provider")

	_, err = New(Options{Transport: peer, Provider: nopProvider{}})
	assert.Error(t, err, "missing device uuid")
}
