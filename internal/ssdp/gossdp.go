package ssdp

import (
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"

	gossdp "github.com/koron/go-ssdp"
	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/logging"
)

const (
	// DefaultMaxAge is the advertised cache lifetime in seconds.
	DefaultMaxAge = 1800

	// DefaultSearchWait is how long a directed search collects responses.
	DefaultSearchWait = 3 // seconds
)

// GoSSDPConfig tunes the multicast transport.
type GoSSDPConfig struct {
	// MaxAge is the CACHE-CONTROL lifetime for alive announcements.
	// Zero means DefaultMaxAge.
	MaxAge int

	// SearchWait is the response-collection window for Search, in seconds.
	// Zero means DefaultSearchWait.
	SearchWait int

	// LocalAddr optionally pins the outgoing interface address.
	LocalAddr string
}

// GoSSDP implements Peer over real UDP multicast using koron/go-ssdp.
// Event delivery is serialized with a mutex so consumers never see two
// callbacks at once.
type GoSSDP struct {
	cfg GoSSDPConfig

	mu      sync.Mutex // serializes event dispatch
	ev      Events
	monitor *gossdp.Monitor
	closed  bool
}

// NewGoSSDP creates an unarmed multicast transport.
func NewGoSSDP(cfg GoSSDPConfig) *GoSSDP {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.SearchWait == 0 {
		cfg.SearchWait = DefaultSearchWait
	}
	return &GoSSDP{cfg: cfg}
}

// Start arms the multicast monitor and signals ready.
func (g *GoSSDP) Start(ev Events) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.monitor != nil {
		return fmt.Errorf("transport already started")
	}

	g.ev = ev
	g.monitor = &gossdp.Monitor{
		Alive:  g.onAlive,
		Bye:    g.onBye,
		Search: g.onSearch,
	}
	if err := g.monitor.Start(); err != nil {
		g.monitor = nil
		return fmt.Errorf("failed to start SSDP monitor: %w", err)
	}

	logging.Debug("SSDP transport started")
	if ev.Ready != nil {
		ev.Ready()
	}
	return nil
}

// Close stops the monitor. Events.Closed fires once the monitor is down.
func (g *GoSSDP) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.monitor == nil || g.closed {
		return nil
	}
	g.closed = true
	err := g.monitor.Close()

	logging.Debug("SSDP transport closed")
	if g.ev.Closed != nil {
		g.ev.Closed()
	}
	return err
}

// Search issues an M-SEARCH and delivers each response as a Found event.
// Collection runs in the background for the configured wait window.
func (g *GoSSDP) Search(target string) error {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return fmt.Errorf("transport closed")
	}

	go func() {
		services, err := gossdp.Search(target, g.cfg.SearchWait, g.cfg.LocalAddr)
		if err != nil {
			logging.Warn("SSDP search failed",
				zap.String("target", target),
				zap.Error(err),
			)
			return
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.closed || g.ev.Found == nil {
			return
		}
		for _, svc := range services {
			g.ev.Found(Service{
				Type:     svc.Type,
				USN:      svc.USN,
				Location: svc.Location,
				Server:   svc.Server,
				Headers: Headers{
					HeaderST:       svc.Type,
					HeaderUSN:      svc.USN,
					HeaderLocation: svc.Location,
					HeaderServer:   svc.Server,
				},
			})
		}
	}()
	return nil
}

// Alive multicasts one NOTIFY ssdp:alive.
func (g *GoSSDP) Alive(h Headers) error {
	logging.LogSSDPMessage("send", "alive", h)
	err := gossdp.AnnounceAlive(
		h[HeaderNT], h[HeaderUSN], h[HeaderLocation], h[HeaderServer],
		g.cfg.MaxAge, g.cfg.LocalAddr,
	)
	if err != nil {
		return fmt.Errorf("failed to announce alive: %w", err)
	}
	return nil
}

// ByeBye multicasts one NOTIFY ssdp:byebye and acknowledges via done.
func (g *GoSSDP) ByeBye(h Headers, done func(error)) {
	logging.LogSSDPMessage("send", "byebye", h)
	err := gossdp.AnnounceBye(h[HeaderNT], h[HeaderUSN], g.cfg.LocalAddr)
	if err != nil {
		err = fmt.Errorf("failed to announce byebye: %w", err)
	}
	if done != nil {
		done(err)
	}
}

// Reply answers an M-SEARCH with a unicast HTTP-over-UDP response.
// go-ssdp's monitor surfaces the requester address but offers no reply
// primitive, so the datagram is composed here.
func (g *GoSSDP) Reply(h Headers, to net.Addr) error {
	conn, err := net.Dial("udp", to.String())
	if err != nil {
		return fmt.Errorf("failed to dial search requester %s: %w", to, err)
	}
	defer conn.Close()

	logging.LogSSDPMessage("send", "search-reply", h)
	if _, err := conn.Write(composeSearchReply(h)); err != nil {
		return fmt.Errorf("failed to send search reply to %s: %w", to, err)
	}
	return nil
}

// composeSearchReply renders the unicast response datagram. Headers are
// emitted in sorted order so the output is deterministic.
func composeSearchReply(h Headers) []byte {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("HTTP/1.1 200 OK\r\n")
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(h[name])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

func (g *GoSSDP) onAlive(m *gossdp.AliveMessage) {
	g.dispatchNotify(Notification{
		Type:     m.Type,
		SubType:  NTSAlive,
		USN:      m.USN,
		Location: m.Location,
		Headers:  flattenHeader(m.Header()),
	})
}

func (g *GoSSDP) onBye(m *gossdp.ByeMessage) {
	g.dispatchNotify(Notification{
		Type:    m.Type,
		SubType: NTSByeBye,
		USN:     m.USN,
		Headers: flattenHeader(m.Header()),
	})
}

func (g *GoSSDP) onSearch(m *gossdp.SearchMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.ev.Search == nil {
		return
	}
	g.ev.Search(SearchRequest{
		Target:  m.Type,
		From:    m.From,
		Headers: flattenHeader(m.Header()),
	})
}

func (g *GoSSDP) dispatchNotify(n Notification) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.ev.Notify == nil {
		return
	}
	logging.LogSSDPMessage("recv", n.SubType, n.Headers)
	g.ev.Notify(n)
}

// flattenHeader reduces an http.Header to first values with upper-cased
// names, the spelling the rest of the package uses.
func flattenHeader(h http.Header) Headers {
	flat := make(Headers, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		flat[strings.ToUpper(name)] = values[0]
	}
	return flat
}
