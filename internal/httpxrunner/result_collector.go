package httpxrunner

import (
	"sync"

	"github.com/projectdiscovery/httpx/runner"
	"github.com/rs/zerolog"
)

// ResultCollector is a thread-safe collector for probe results.
type ResultCollector struct {
	logger  zerolog.Logger
	results []ProbeResult
	mutex   sync.Mutex
}

// NewResultCollector creates a new result collector.
func NewResultCollector(logger zerolog.Logger) *ResultCollector {
	return &ResultCollector{
		logger:  logger.With().Str("component", "ResultCollector").Logger(),
		results: make([]ProbeResult, 0),
	}
}

// Collect is the callback passed to the httpx engine.
func (rc *ResultCollector) Collect(result runner.Result) {
	rc.logger.Debug().
		Str("input", result.Input).
		Int("status_code", result.StatusCode).
		Bool("failed", result.Failed).
		Msg("Collected result")

	rc.mutex.Lock()
	rc.results = append(rc.results, ProbeResult{
		InputURL:   result.Input,
		URL:        result.URL,
		StatusCode: result.StatusCode,
		Failed:     result.Failed,
		Error:      result.Error,
	})
	rc.mutex.Unlock()
}

// GetResults returns a copy of all collected results.
func (rc *ResultCollector) GetResults() []ProbeResult {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	out := make([]ProbeResult, len(rc.results))
	copy(out, rc.results)
	return out
}

// AliveURLs returns the input URL of every result answering with statusCode.
// The URL httpx reports is used when the input is empty.
func (rc *ResultCollector) AliveURLs(statusCode int) []string {
	var alive []string
	for _, r := range rc.GetResults() {
		if !r.Alive(statusCode) {
			continue
		}
		if r.InputURL != "" {
			alive = append(alive, r.InputURL)
		} else {
			alive = append(alive, r.URL)
		}
	}
	return alive
}
