package config

import (
	"log/slog"
)

// Built from the current default on every call, so it follows whatever
// handler main installs and is safe to call from any goroutine.
func logger() *slog.Logger {
	return slog.Default().With("package", "git.config")
}
