// Package logging provides structured logging for the DIAL receiver and
// controller.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the module. Logging is silent by default so the
// CLIs stay quiet; set DIAL_LOG_LEVEL (or pass an explicit level to
// Initialize) to enable output.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed protocol info (SSDP message headers, search replies)
//   - Info: Normal operations (requests served, advertisements sent)
//   - Warn: Non-fatal issues (failed search replies, dropped messages)
//   - Error: Fatal issues (startup failures)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Launching app",
//	    zap.String("app", "YouTube"),
//	    zap.String("remote_addr", "192.168.1.100"),
//	)
//
// # Specialized Logging
//
// Domain-specific helpers keep call sites short:
//
//	logging.LogSSDPMessage("send", "alive", headers)
//	logging.LogHTTPRequest(remoteAddr, method, path)
//	logging.LogHTTPResponse(remoteAddr, method, path, statusCode)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
