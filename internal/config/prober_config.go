package config

// ProberConfig configures the liveness filter.
//
// With the exec engine Binary is run once with every unique URL on stdin.
// With the library engine the httpx runner package is driven in-process and
// Binary/ExtraArgs are ignored.
type ProberConfig struct {
	Engine      string   `json:"engine,omitempty" yaml:"engine,omitempty" validate:"required,proberengine"`
	Binary      string   `json:"binary,omitempty" yaml:"binary,omitempty" validate:"required"`
	StatusCode  int      `json:"status_code,omitempty" yaml:"status_code,omitempty" validate:"min=100,max=599"`
	ExtraArgs   []string `json:"extra_args,omitempty" yaml:"extra_args,omitempty"`
	Threads     int      `json:"threads,omitempty" yaml:"threads,omitempty" validate:"min=1"`
	TimeoutSecs int      `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	Retries     int      `json:"retries,omitempty" yaml:"retries,omitempty" validate:"min=0"`
}

// NewDefaultProberConfig creates default prober configuration
func NewDefaultProberConfig() ProberConfig {
	return ProberConfig{
		Engine:      EngineExec,
		Binary:      DefaultProberBinary,
		StatusCode:  DefaultProberStatusCode,
		ExtraArgs:   []string{},
		Threads:     DefaultProberThreads,
		TimeoutSecs: DefaultProberTimeoutSecs,
		Retries:     DefaultProberRetries,
	}
}
