package advertise

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/logging"
	"github.com/dialproto/godial/internal/ssdp"
)

const (
	// DefaultMaxPayloadBytes caps request bodies on the app-control
	// surface. It is also the floor: configured values below it are
	// raised, never lowered.
	DefaultMaxPayloadBytes = 4096

	// DefaultServer identifies the receiver in SSDP messages.
	DefaultServer = "Linux/3.1 UPnP/1.1 godial/1.0"

	// Fixed UPnP bookkeeping fields carried on every search reply.
	configID = "7339"
	bootID   = "7339"
)

// Options configures an advertising service.
type Options struct {
	// Device is the advertised identity. DescriptionURL and
	// ApplicationURL must be set.
	Device dial.Device

	// Transport is the discovery peer. Required.
	Transport ssdp.Peer

	// Provider owns app state. Required.
	Provider AppProvider

	// Server overrides the SERVER identification string.
	Server string

	// Extra header fields are merged into every announcement and search
	// reply; protocol-owned fields win on collision.
	Extra map[string]string

	// MaxPayloadBytes caps request bodies. Values below the default are
	// raised to it.
	MaxPayloadBytes int

	// RoutePrefix is prepended to every HTTP route ("" by default).
	RoutePrefix string

	// OnReady fires after the full alive batch has been sent.
	OnReady func()

	// OnStopped fires after all withdrawals are acknowledged and the
	// transport is closed.
	OnStopped func()
}

// Service advertises one device and serves its app-control surface.
type Service struct {
	device     dial.Device
	transport  ssdp.Peer
	provider   AppProvider
	server     string
	extra      map[string]string
	maxPayload int
	prefix     string
	onReady    func()
	onStopped  func()

	// ads is the fixed five-entry advertisement batch; types indexes it
	// for search matching.
	ads   []dial.ServiceAdvertisement
	types map[string]bool
}

// New validates the options and builds a service. The advertisement batch is
// fixed here for the life of the service.
func New(opts Options) (*Service, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("advertise: no transport configured")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("advertise: no app provider configured")
	}
	if opts.Device.UUID == "" {
		return nil, fmt.Errorf("advertise: device has no uuid")
	}
	if opts.Device.DescriptionURL == "" {
		return nil, fmt.Errorf("advertise: device has no description URL")
	}

	server := opts.Server
	if server == "" {
		server = DefaultServer
	}
	maxPayload := opts.MaxPayloadBytes
	if maxPayload < DefaultMaxPayloadBytes {
		maxPayload = DefaultMaxPayloadBytes
	}

	device := opts.Device
	device.ApplicationURL = dial.StripTrailingSlash(device.ApplicationURL)

	s := &Service{
		device:     device,
		transport:  opts.Transport,
		provider:   opts.Provider,
		server:     server,
		extra:      opts.Extra,
		maxPayload: maxPayload,
		prefix:     opts.RoutePrefix,
		onReady:    opts.OnReady,
		onStopped:  opts.OnStopped,
		ads:        dial.Advertisements(device, server, opts.Extra),
		types:      make(map[string]bool),
	}
	for _, ad := range s.ads {
		s.types[ad.Type] = true
	}
	return s, nil
}

// Device returns the advertised identity.
func (s *Service) Device() dial.Device {
	return s.device
}

// Start arms the transport. Once the transport reports ready, one alive
// announcement is sent per service type and then OnReady fires.
func (s *Service) Start() error {
	return s.transport.Start(ssdp.Events{
		Ready:  s.announcePresence,
		Search: s.handleSearch,
	})
}

// Stop withdraws all five advertisements, waits for every acknowledgment,
// then closes the transport and fires OnStopped. The wait is a count
// barrier: acknowledgment order is irrelevant.
func (s *Service) Stop() error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	wg.Add(len(s.ads))
	for _, ad := range s.ads {
		headers := ssdp.Headers{
			ssdp.HeaderNT:  ad.Type,
			ssdp.HeaderUSN: ad.USN,
		}
		s.transport.ByeBye(headers, func(err error) {
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
			wg.Done()
		})
	}
	wg.Wait()

	closeErr := s.transport.Close()
	logging.Info("Advertising stopped", zap.String("device", s.device.UUID))
	if s.onStopped != nil {
		s.onStopped()
	}
	if firstErr != nil {
		return firstErr
	}
	return closeErr
}

// announcePresence sends the alive batch. Runs in transport-callback
// context, so no locking is needed.
func (s *Service) announcePresence() {
	for _, ad := range s.ads {
		headers := dial.MergeHeaders(ssdp.Headers{
			ssdp.HeaderNT:       ad.Type,
			ssdp.HeaderUSN:      ad.USN,
			ssdp.HeaderLocation: ad.Location,
			ssdp.HeaderServer:   ad.Server,
		}, s.extra)
		if err := s.transport.Alive(headers); err != nil {
			logging.Warn("Failed to announce presence",
				zap.String("type", ad.Type),
				zap.Error(err),
			)
		}
	}

	logging.Info("Device advertised",
		zap.String("device", s.device.UUID),
		zap.String("location", s.device.DescriptionURL),
	)
	if s.onReady != nil {
		s.onReady()
	}
}

// handleSearch answers a directed search when the requested target is one of
// the five advertised types. Replies go back unicast, never multicast.
func (s *Service) handleSearch(req ssdp.SearchRequest) {
	if !s.types[req.Target] {
		return
	}

	headers := dial.MergeHeaders(ssdp.Headers{
		ssdp.HeaderST:       req.Target,
		ssdp.HeaderUSN:      dial.USN(s.device.UUID, req.Target),
		ssdp.HeaderLocation: s.device.DescriptionURL,
		ssdp.HeaderServer:   s.server,
		ssdp.HeaderConfigID: configID,
		ssdp.HeaderBootID:   bootID,
	}, s.extra)

	if err := s.transport.Reply(headers, req.From); err != nil {
		logging.Warn("Failed to answer search",
			zap.String("target", req.Target),
			zap.Stringer("from", req.From),
			zap.Error(err),
		)
	}
}
