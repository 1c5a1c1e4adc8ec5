package ai

import "sync/atomic"

// debugLoggingEnabled guards the per-tick debug logs of the AI subsystem.
// Set via EnableDebugLogging() from main once the log level is known.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables debug logging for AI subsystem.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("target chosen", "monster", id, "candidates", len(snapshots))
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
