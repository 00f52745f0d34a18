package journal

import (
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎚️ Level selects how much detail the run log records. None suppresses the
// log file entirely.
type Level int

const (
	None Level = iota
	Debug
	Info
	Warning
	Error
	Critical
)

// String returns a string representation of Level
func (l Level) String() string {
	switch l {
	case None:
		return "NONE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, case-insensitively
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NONE", "":
		return None, nil
	case "DEBUG":
		return Debug, nil
	case "INFO":
		return Info, nil
	case "WARNING":
		return Warning, nil
	case "ERROR":
		return Error, nil
	case "CRITICAL":
		return Critical, nil
	default:
		return None, errors.Errorf("unknown log level %q", name)
	}
}

// zerologLevel maps a Level onto the zerolog filter threshold
func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	case Critical:
		return zerolog.FatalLevel
	default:
		return zerolog.Disabled
	}
}
