// Package apps provides an in-memory AppProvider implementation so a
// receiver can be run end to end without wiring a platform-specific
// application manager. Each hosted app carries optional launch and stop
// callbacks; when absent, launch simply assigns a fresh correlation token
// and stop clears it.
package apps

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/logging"
)

// Entry configures one hosted application.
type Entry struct {
	Name      string
	AllowStop bool

	// AdditionalData and Namespaces are rendered into the app's
	// description document as-is.
	AdditionalData map[string]string
	Namespaces     map[string]string

	// OnLaunch, when set, is invoked with the request payload and returns
	// the instance's correlation token. When nil, a sequential token is
	// assigned.
	OnLaunch func(payload []byte) (string, error)

	// OnStop, when set, is invoked with the current token and reports
	// whether the instance stopped. When nil, stop always succeeds.
	OnStop func(pid string) bool
}

type hostedApp struct {
	entry Entry
	pid   string
}

// Registry is a thread-safe in-memory app provider.
type Registry struct {
	mu      sync.RWMutex
	apps    map[string]*hostedApp
	counter int
}

// NewRegistry creates a registry hosting the given apps.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{apps: make(map[string]*hostedApp, len(entries))}
	for _, e := range entries {
		r.apps[e.Name] = &hostedApp{entry: e}
	}
	return r
}

// Get returns the current record for name, or nil when not hosted.
func (r *Registry) Get(_ context.Context, name string) *dial.App {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosted, ok := r.apps[name]
	if !ok {
		return nil
	}
	return &dial.App{
		Name:           hosted.entry.Name,
		Pid:            hosted.pid,
		AllowStop:      hosted.entry.AllowStop,
		AdditionalData: hosted.entry.AdditionalData,
		Namespaces:     hosted.entry.Namespaces,
	}
}

// Launch starts or relaunches the named app and returns its token.
func (r *Registry) Launch(_ context.Context, name string, payload []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hosted, ok := r.apps[name]
	if !ok {
		return "", fmt.Errorf("app %q not hosted", name)
	}

	var pid string
	if hosted.entry.OnLaunch != nil {
		var err error
		pid, err = hosted.entry.OnLaunch(payload)
		if err != nil {
			return "", err
		}
	} else {
		r.counter++
		pid = fmt.Sprintf("run-%d", r.counter)
	}

	hosted.pid = pid
	logging.Info("App launched",
		zap.String("app", name),
		zap.String("pid", pid),
		zap.Int("payload_bytes", len(payload)),
	)
	return pid, nil
}

// Stop halts the instance identified by pid.
func (r *Registry) Stop(_ context.Context, name, pid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	hosted, ok := r.apps[name]
	if !ok || hosted.pid != pid {
		return false
	}

	if hosted.entry.OnStop != nil && !hosted.entry.OnStop(pid) {
		return false
	}

	hosted.pid = ""
	logging.Info("App stopped", zap.String("app", name), zap.String("pid", pid))
	return true
}
