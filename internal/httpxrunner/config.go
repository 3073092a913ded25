package httpxrunner

// Config holds the configuration for the in-process httpx runner
type Config struct {
	Targets         []string
	Method          string
	MatchStatusCode int
	Timeout         int // In seconds
	Retries         int
	Threads         int
	FollowRedirects bool
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Targets:         []string{},
		Method:          "GET",
		MatchStatusCode: 200,
		Timeout:         10,
		Retries:         0,
		Threads:         50,
		FollowRedirects: false,
	}
}
