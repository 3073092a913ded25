package config

import "time"

// ExtractorConfig configures one per-URL collaborator (endpoint extractor or
// secret scanner).
type ExtractorConfig struct {
	Engine           string   `json:"engine,omitempty" yaml:"engine,omitempty" validate:"required,extractorengine"`
	Binary           string   `json:"binary,omitempty" yaml:"binary,omitempty" validate:"required"`
	Args             []string `json:"args,omitempty" yaml:"args,omitempty" validate:"required,min=1,urlplaceholder"`
	FetchTimeoutSecs int      `json:"fetch_timeout_secs,omitempty" yaml:"fetch_timeout_secs,omitempty" validate:"min=1"`
	FetchRetries     int      `json:"fetch_retries,omitempty" yaml:"fetch_retries,omitempty" validate:"min=0"`
	FetchMaxBodyMB   int      `json:"fetch_max_body_mb,omitempty" yaml:"fetch_max_body_mb,omitempty" validate:"min=1"`
}

// NewDefaultEndpointConfig creates the default endpoint extractor configuration
func NewDefaultEndpointConfig() ExtractorConfig {
	return newDefaultExtractorConfig(DefaultEndpointBinary)
}

// NewDefaultSecretConfig creates the default secret scanner configuration
func NewDefaultSecretConfig() ExtractorConfig {
	return newDefaultExtractorConfig(DefaultSecretBinary)
}

func newDefaultExtractorConfig(binary string) ExtractorConfig {
	return ExtractorConfig{
		Engine:           EngineExec,
		Binary:           binary,
		Args:             DefaultExtractorArgs(),
		FetchTimeoutSecs: DefaultFetchTimeoutSecs,
		FetchRetries:     DefaultFetchRetries,
		FetchMaxBodyMB:   DefaultFetchMaxBodyMB,
	}
}

// FetchTimeout returns the jsluice engine download deadline
func (ec ExtractorConfig) FetchTimeout() time.Duration {
	return time.Duration(ec.FetchTimeoutSecs) * time.Second
}
