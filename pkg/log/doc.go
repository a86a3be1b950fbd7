// Package log provides the logging abstraction used by frameship components.
//
// Components depend only on the [Logger] interface and build structured
// fields with the helpers in this package. A zerolog-backed implementation
// is provided for the CLI and a no-op implementation for tests and for
// embedders that do not want output.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, "info")
//	capture := log.Named(logger, "capture")
//	capture.Warn("frame write failed", log.Err(err), log.String("path", p))
//
// # Custom Loggers
//
// Implement [Logger] to route frameship output into an existing logging
// setup:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
