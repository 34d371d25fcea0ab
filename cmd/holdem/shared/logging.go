package shared

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a stderr logger. format is "text" or "json"; level is
// used unless debug is set.
func SetupLogger(debug bool, format, level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if format == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}

	switch {
	case debug:
		logger.SetLevel(log.DebugLevel)
	case level != "":
		if lvl, err := log.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.Warn("Unknown log level, using info", "level", level)
		}
	}
	return logger
}
