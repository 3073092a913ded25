package config

const (
	// AppName is used for XDG directories and the config env variable
	AppName = "jshunter"

	// ConfigPathEnv overrides the config file location
	ConfigPathEnv = "JSHUNTER_CONFIG_PATH"

	// Pipeline Defaults
	DefaultInputFile       = "js_urls.txt"
	DefaultOutputDir       = "js_out"
	DefaultAliveFile       = "js_alive.txt"
	DefaultEndpointsFile   = "js_endpoints.txt"
	DefaultSecretsFile     = "js_secrets.txt"
	DefaultFailuresFile    = "js_failures.log"
	DefaultConcurrency     = 10
	DefaultItemTimeoutSecs = 0 // no per-item deadline
	MaxConcurrency         = 256

	// Engines
	EngineExec    = "exec"
	EngineLibrary = "library"
	EngineJSluice = "jsluice"

	// Prober Defaults
	DefaultProberBinary      = "httpx"
	DefaultProberStatusCode  = 200
	DefaultProberThreads     = 50
	DefaultProberTimeoutSecs = 10
	DefaultProberRetries     = 0

	// Endpoint extractor Defaults
	DefaultEndpointBinary = "linkfinder"

	// Secret scanner Defaults
	DefaultSecretBinary = "secretfinder"

	// URLPlaceholder is replaced by the target URL in extractor args
	URLPlaceholder = "{url}"

	// jsluice engine Defaults
	DefaultFetchTimeoutSecs = 15
	DefaultFetchRetries     = 1
	DefaultFetchMaxBodyMB   = 10

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Resource limiter Defaults
	DefaultSystemMemThreshold = 0.9
	DefaultCPUThreshold       = 0.95
	DefaultPollIntervalMillis = 500
	DefaultCheckIntervalSecs  = 15

	// History Defaults
	DefaultHistoryFile = "history.db"
)

// DefaultExtractorArgs is the argument template shared by the endpoint
// extractor and the secret scanner: one URL in, plain lines out.
func DefaultExtractorArgs() []string {
	return []string{"-i", URLPlaceholder, "-o", "cli"}
}
