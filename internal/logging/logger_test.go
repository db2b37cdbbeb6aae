package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// withObservedLogger swaps the global logger for an observer core and
// restores it when the test ends.
func withObservedLogger(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })
	return logs
}

func TestLogHTTPRequest(t *testing.T) {
	logs := withObservedLogger(t, zapcore.InfoLevel)

	LogHTTPRequest("192.168.1.50:41234", "POST", "/apps/YouTube")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["remote_addr"] != "192.168.1.50:41234" {
		t.Errorf("remote_addr = %v", fields["remote_addr"])
	}
	if fields["method"] != "POST" || fields["path"] != "/apps/YouTube" {
		t.Errorf("method/path = %v/%v", fields["method"], fields["path"])
	}
}

func TestLogHTTPResponse(t *testing.T) {
	logs := withObservedLogger(t, zapcore.InfoLevel)

	LogHTTPResponse("192.168.1.50:41234", "GET", "/apps/YouTube", 404)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status_code"]; got != int64(404) {
		t.Errorf("status_code = %v", got)
	}
}

func TestLogSSDPMessageIsDebugLevel(t *testing.T) {
	logs := withObservedLogger(t, zapcore.InfoLevel)

	LogSSDPMessage("send", "alive", map[string]string{"NT": "upnp:rootdevice"})

	if n := len(logs.All()); n != 0 {
		t.Errorf("ssdp messages must log at debug, got %d entries at info", n)
	}
}

func TestInitializeUnsetLevelIsSilent(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	prev := logger
	t.Cleanup(func() { logger = prev })

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("unset level must produce a silent logger")
	}
}
