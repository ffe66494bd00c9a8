// Package monitor is the diagnostic sink handed to the tile builder and the
// spawn process.
package monitor

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"tilespawn.dev/internal/sim/tiles"
)

// NewLogger builds a logrus logger from LOG_LEVEL (default "info") and
// LOG_FORMAT ("json" or text).
func NewLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()

	lv, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		lv = "info"
	}
	level, err := logrus.ParseLevel(lv)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	return l
}

// Monitor implements tiles.Monitor over a logrus entry.
type Monitor struct {
	entry *logrus.Entry
}

func New(l *logrus.Logger) *Monitor {
	if l == nil {
		l = NewLogger(nil)
	}
	return &Monitor{entry: logrus.NewEntry(l)}
}

// WithArea returns a monitor whose entries carry the area id.
func (m *Monitor) WithArea(areaID string) *Monitor {
	return &Monitor{entry: m.entry.WithField("area", areaID)}
}

func (m *Monitor) WithField(key string, value any) *Monitor {
	return &Monitor{entry: m.entry.WithField(key, value)}
}

func (m *Monitor) Log(message string, level tiles.LogLevel) {
	if level == tiles.LevelAlert {
		m.Alert(message)
		return
	}
	m.entry.Log(Level(level), message)
}

// Level maps a diagnostic severity onto logrus. Alert is logged at error
// level with an alert field so it survives filtering.
func Level(l tiles.LogLevel) logrus.Level {
	switch l {
	case tiles.LevelTrace:
		return logrus.TraceLevel
	case tiles.LevelDebug:
		return logrus.DebugLevel
	case tiles.LevelInfo:
		return logrus.InfoLevel
	case tiles.LevelWarn:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func (m *Monitor) Alert(message string) {
	m.entry.WithField("alert", true).Error(message)
}

func (m *Monitor) Entry() *logrus.Entry { return m.entry }
