package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a leveled logger writing to stderr
func SetupLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// SetupFileLogger logs to w, for commands that own the terminal
func SetupFileLogger(w io.Writer, debug bool) *log.Logger {
	lvl := log.WarnLevel
	if debug {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Level: lvl, ReportTimestamp: true})
}
