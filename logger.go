// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rtss

import (
	"log/slog"

	"github.com/gogpu/rtss/srs"
)

// SetLogger configures the logger for rtss and all its sub-packages.
// By default, rtss produces no log output. Pass nil to restore the silent
// default.
//
// Log levels used by rtss:
//   - [slog.LevelDebug]: pipeline phase transitions, generated passes
//   - [slog.LevelInfo]: capability downgrades (skinning disabled)
//   - [slog.LevelWarn]: dropped sub render states
//
// Example:
//
//	rtss.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	srs.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return srs.Logger()
}
