package tracelog

import (
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Level is a severity rank. Lower values are more severe: LevelFatal is 0 and
// LevelTrace is 5. A call at level L passes a minimum level M iff L <= M.
type Level int

const (
	LevelFatal Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// ErrUnknownLevel is returned by ParseLevel for names outside the level table.
var ErrUnknownLevel = errors.New("unknown log level")

var levelNames = [...]string{
	LevelFatal: "FATAL",
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if !l.Valid() {
		return "LEVEL(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Valid reports whether l is one of the six table entries.
func (l Level) Valid() bool {
	return l >= LevelFatal && l <= LevelTrace
}

// Levels returns the level table in ordinal order.
func Levels() []Level {
	return []Level{LevelFatal, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}
}

// ParseLevel looks up a level by name. Matching is case-sensitive, so "info"
// is not a level.
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, errors.Wrapf(ErrUnknownLevel, "%q", name)
}

// LevelFromVerbosity maps a count of -v flags to a level.
func LevelFromVerbosity(v int) Level {
	switch {
	case v <= 0:
		return LevelWarn
	case v == 1:
		return LevelInfo
	case v == 2:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// slogLevelTrace sits one step below slog.LevelDebug.
const slogLevelTrace = slog.LevelDebug - 4

// slogLevelFatal sits one step above slog.LevelError.
const slogLevelFatal = slog.LevelError + 4

// LevelFromSlog maps a slog level onto the table.
func LevelFromSlog(l slog.Level) Level {
	switch {
	case l >= slogLevelFatal:
		return LevelFatal
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	case l >= slog.LevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Slog returns the slog level that LevelFromSlog maps back to l.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelFatal:
		return slogLevelFatal
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slogLevelTrace
	}
}
