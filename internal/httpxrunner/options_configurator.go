package httpxrunner

import (
	"strconv"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/httpx/runner"
)

// OptionsConfigurator converts Config into the runner.Options required by
// the httpx engine.
type OptionsConfigurator struct {
	config   *Config
	onResult func(result runner.Result)
}

// NewOptionsConfigurator creates a new options configurator.
func NewOptionsConfigurator(config *Config, onResult func(result runner.Result)) *OptionsConfigurator {
	return &OptionsConfigurator{
		config:   config,
		onResult: onResult,
	}
}

// GetOptions builds and returns the httpx runner options.
func (oc *OptionsConfigurator) GetOptions() *runner.Options {
	options := &runner.Options{
		Methods:         oc.config.Method,
		Silent:          true,
		NoColor:         true,
		Timeout:         oc.config.Timeout,
		Retries:         oc.config.Retries,
		Threads:         oc.config.Threads,
		FollowRedirects: oc.config.FollowRedirects,
		StatusCode:      true,
		HostMaxErrors:   -1,

		InputTargetHost: goflags.StringSlice(oc.config.Targets),
		OnResult:        oc.onResult,
	}

	if oc.config.MatchStatusCode > 0 {
		options.OutputMatchStatusCode = strconv.Itoa(oc.config.MatchStatusCode)
	}
	if options.Methods == "" {
		options.Methods = "GET"
	}

	return options
}
