package config

import (
	"path/filepath"
	"time"
)

// PipelineConfig holds the input, output layout and dispatch limits shared by all stages.
type PipelineConfig struct {
	InputFile       string `json:"input_file,omitempty" yaml:"input_file,omitempty" validate:"required"`
	OutputDir       string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" validate:"required"`
	AliveFile       string `json:"alive_file,omitempty" yaml:"alive_file,omitempty" validate:"required,filename"`
	EndpointsFile   string `json:"endpoints_file,omitempty" yaml:"endpoints_file,omitempty" validate:"required,filename"`
	SecretsFile     string `json:"secrets_file,omitempty" yaml:"secrets_file,omitempty" validate:"required,filename"`
	FailuresFile    string `json:"failures_file,omitempty" yaml:"failures_file,omitempty" validate:"required,filename"`
	Concurrency     int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"min=1,max=256"`
	ItemTimeoutSecs int    `json:"item_timeout_secs,omitempty" yaml:"item_timeout_secs,omitempty" validate:"min=0"`
	EchoSecrets     bool   `json:"echo_secrets" yaml:"echo_secrets"`
}

// NewDefaultPipelineConfig creates default pipeline configuration
func NewDefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		InputFile:       DefaultInputFile,
		OutputDir:       DefaultOutputDir,
		AliveFile:       DefaultAliveFile,
		EndpointsFile:   DefaultEndpointsFile,
		SecretsFile:     DefaultSecretsFile,
		FailuresFile:    DefaultFailuresFile,
		Concurrency:     DefaultConcurrency,
		ItemTimeoutSecs: DefaultItemTimeoutSecs,
		EchoSecrets:     true,
	}
}

// AlivePath returns the alive-URL checkpoint location
func (pc PipelineConfig) AlivePath() string {
	return filepath.Join(pc.OutputDir, pc.AliveFile)
}

// EndpointsPath returns the endpoint list location
func (pc PipelineConfig) EndpointsPath() string {
	return filepath.Join(pc.OutputDir, pc.EndpointsFile)
}

// SecretsPath returns the secrets list location
func (pc PipelineConfig) SecretsPath() string {
	return filepath.Join(pc.OutputDir, pc.SecretsFile)
}

// FailuresPath returns the per-item failure log location
func (pc PipelineConfig) FailuresPath() string {
	return filepath.Join(pc.OutputDir, pc.FailuresFile)
}

// ItemTimeout returns the per-invocation deadline, zero meaning none
func (pc PipelineConfig) ItemTimeout() time.Duration {
	return time.Duration(pc.ItemTimeoutSecs) * time.Second
}
