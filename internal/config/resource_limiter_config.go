package config

// ResourceLimiterConfig holds configuration for the dispatch resource gate
type ResourceLimiterConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"min=0.1,max=1.0"`
	CPUThreshold       float64 `json:"cpu_threshold,omitempty" yaml:"cpu_threshold,omitempty" validate:"min=0.1,max=1.0"`
	PollIntervalMillis int     `json:"poll_interval_millis,omitempty" yaml:"poll_interval_millis,omitempty" validate:"min=10"`
	CheckIntervalSecs  int     `json:"check_interval_secs,omitempty" yaml:"check_interval_secs,omitempty" validate:"min=1"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		Enabled:            false,
		SystemMemThreshold: DefaultSystemMemThreshold,
		CPUThreshold:       DefaultCPUThreshold,
		PollIntervalMillis: DefaultPollIntervalMillis,
		CheckIntervalSecs:  DefaultCheckIntervalSecs,
	}
}
