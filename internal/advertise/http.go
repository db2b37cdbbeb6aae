package advertise

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/description"
	"github.com/dialproto/godial/internal/logging"
)

const xmlContentType = "application/xml; charset=utf-8"

// Handler returns the app-control HTTP surface. Routes honor the configured
// prefix; status codes are the protocol contract:
//
//	GET    {prefix}/apps                  204
//	GET    {prefix}/apps/{name}           200 app description | 404
//	POST   {prefix}/apps/{name}           200 relaunch | 201 first launch | 404, 413, 503
//	POST   {prefix}/apps/{name}/dial_data 404, 413, 501 (reserved)
//	DELETE {prefix}/apps/{name}[/{pid}]   200 | 404, 405, 400
//	GET    {prefix}/ssdp/device-desc.xml  200 device description
//
// Errors never propagate past this boundary; every failure becomes a status
// code.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	p := s.prefix
	mux.HandleFunc("GET "+p+"/apps", s.handleAppList)
	mux.HandleFunc("GET "+p+"/apps/{name}", s.handleAppInfo)
	mux.HandleFunc("POST "+p+"/apps/{name}", s.handleLaunch)
	mux.HandleFunc("POST "+p+"/apps/{name}/dial_data", s.handleDialData)
	mux.HandleFunc("DELETE "+p+"/apps/{name}", s.handleStopWithoutPid)
	mux.HandleFunc("DELETE "+p+"/apps/{name}/{pid}", s.handleStop)
	mux.HandleFunc("GET "+p+"/ssdp/device-desc.xml", s.handleDeviceDescription)
	return logRequests(mux)
}

// logRequests records every inbound request before routing. The matching
// response line is written by respond once a status is resolved.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleAppList(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusNoContent)
}

func (s *Service) handleAppInfo(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	app := s.provider.Get(r.Context(), name)
	if app == nil {
		s.respond(w, r, http.StatusNotFound)
		return
	}

	text, err := description.RenderAppDescription(*app)
	if err != nil {
		logging.Error("Failed to render app description",
			zap.String("app", name),
			zap.Error(err),
		)
		s.respond(w, r, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xmlContentType)
	s.respond(w, r, http.StatusOK)
	io.WriteString(w, text)
}

func (s *Service) handleLaunch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	app := s.provider.Get(r.Context(), name)
	if app == nil {
		s.respond(w, r, http.StatusNotFound)
		return
	}

	payload, ok := s.readBody(w, r)
	if !ok {
		return
	}

	// The relaunch decision is made from the state observed before the
	// launch hook runs, not from the post-launch state.
	wasRunning := app.Running()

	pid, err := s.provider.Launch(r.Context(), name, payload)
	if err != nil {
		logging.Warn("Launch hook failed",
			zap.String("app", name),
			zap.Error(err),
		)
		s.respond(w, r, http.StatusServiceUnavailable)
		return
	}

	if pid != "" {
		w.Header().Set("Location", s.instanceURL(r, name, pid))
	}
	if wasRunning {
		s.respond(w, r, http.StatusOK)
	} else {
		s.respond(w, r, http.StatusCreated)
	}
}

// handleDialData guards the reserved dial_data endpoint: the existence and
// body-size checks run as usual, but the operation itself is unimplemented.
func (s *Service) handleDialData(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.provider.Get(r.Context(), name) == nil {
		s.respond(w, r, http.StatusNotFound)
		return
	}
	if _, ok := s.readBody(w, r); !ok {
		return
	}
	s.respond(w, r, http.StatusNotImplemented)
}

// handleStopWithoutPid rejects DELETE requests that omit the correlation
// token.
func (s *Service) handleStopWithoutPid(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusBadRequest)
}

func (s *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	pid := r.PathValue("pid")

	app := s.provider.Get(r.Context(), name)
	if app == nil {
		s.respond(w, r, http.StatusNotFound)
		return
	}
	if !app.AllowStop {
		s.respond(w, r, http.StatusMethodNotAllowed)
		return
	}
	if app.Pid != pid {
		s.respond(w, r, http.StatusBadRequest)
		return
	}

	if s.provider.Stop(r.Context(), name, pid) {
		s.respond(w, r, http.StatusOK)
	} else {
		s.respond(w, r, http.StatusBadRequest)
	}
}

func (s *Service) handleDeviceDescription(w http.ResponseWriter, r *http.Request) {
	text, err := description.RenderDeviceDescription(s.device)
	if err != nil {
		logging.Error("Failed to render device description", zap.Error(err))
		s.respond(w, r, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Application-URL", s.device.ApplicationURL)
	w.Header().Set("Content-Type", xmlContentType)
	s.respond(w, r, http.StatusOK)
	io.WriteString(w, text)
}

// readBody reads the request body under the configured cap. Oversized
// requests are rejected with 413 before any state-changing hook runs.
func (s *Service) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.ContentLength > int64(s.maxPayload) {
		s.respond(w, r, http.StatusRequestEntityTooLarge)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, int64(s.maxPayload)+1))
	if err != nil {
		s.respond(w, r, http.StatusBadRequest)
		return nil, false
	}
	if len(body) > s.maxPayload {
		s.respond(w, r, http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return body, true
}

// instanceURL builds the absolute LOCATION for a launched instance from the
// request's own host, so it is reachable from wherever the request came.
func (s *Service) instanceURL(r *http.Request, name, pid string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s/apps/%s/%s", scheme, r.Host, s.prefix, name, pid)
}

// respond logs and writes the resolved status. Handlers that send a body
// call it before writing.
func (s *Service) respond(w http.ResponseWriter, r *http.Request, status int) {
	logging.LogHTTPResponse(r.RemoteAddr, r.Method, r.URL.Path, status)
	w.WriteHeader(status)
}
