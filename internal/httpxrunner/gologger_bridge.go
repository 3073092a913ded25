package httpxrunner

import (
	"strings"
	"sync"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/rs/zerolog"
)

var bridgeMu sync.Mutex

// zerologWriter forwards gologger output into zerolog so the httpx engine
// never writes to stdout or stderr directly.
type zerologWriter struct {
	logger zerolog.Logger
}

// Write implements gologger's writer.Writer
func (w *zerologWriter) Write(data []byte, level levels.Level) {
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return
	}
	var event *zerolog.Event
	switch level {
	case levels.LevelFatal, levels.LevelError:
		event = w.logger.Error()
	case levels.LevelWarning:
		event = w.logger.Warn()
	case levels.LevelInfo:
		event = w.logger.Info()
	case levels.LevelDebug, levels.LevelVerbose:
		event = w.logger.Debug()
	default:
		// Silent-level lines are result output.
		event = w.logger.Trace()
	}
	event.Msg(msg)
}

// redirectGologger routes the global gologger through logger. Debug and
// verbose output stays suppressed.
func redirectGologger(logger zerolog.Logger) {
	bridgeMu.Lock()
	defer bridgeMu.Unlock()
	gologger.DefaultLogger.SetWriter(&zerologWriter{
		logger: logger.With().Str("source", "httpx").Logger(),
	})
	gologger.DefaultLogger.SetMaxLevel(levels.LevelWarning)
}
