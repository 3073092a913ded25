package logger

import (
	"github.com/monsterinc/jshunter/internal/config"
)

// ConfigConverter converts config.LogConfig to LoggerConfig
type ConfigConverter struct {
	levelParser  *LogLevelParser
	formatParser *LogFormatParser
}

// NewConfigConverter creates a new config converter
func NewConfigConverter() *ConfigConverter {
	return &ConfigConverter{
		levelParser:  NewLogLevelParser(),
		formatParser: NewLogFormatParser(),
	}
}

// ConvertConfig converts application config to logger config. An unknown
// level is reported but still yields a usable info-level config.
func (cc *ConfigConverter) ConvertConfig(cfg config.LogConfig) (LoggerConfig, error) {
	level, err := cc.levelParser.ParseLevel(cfg.LogLevel)

	loggerConfig := DefaultLoggerConfig()
	loggerConfig.Level = level
	loggerConfig.Format = cc.formatParser.ParseFormat(cfg.LogFormat)
	loggerConfig.EnableFile = cfg.LogFile != ""
	loggerConfig.FilePath = cfg.LogFile
	loggerConfig.MaxSizeMB = cc.getMaxSizeMB(cfg.MaxLogSizeMB)
	loggerConfig.MaxBackups = cc.getMaxBackups(cfg.MaxLogBackups)
	return loggerConfig, err
}

func (cc *ConfigConverter) getMaxSizeMB(maxSize int) int {
	if maxSize <= 0 {
		return config.DefaultMaxLogSizeMB
	}
	return maxSize
}

func (cc *ConfigConverter) getMaxBackups(maxBackups int) int {
	if maxBackups <= 0 {
		return config.DefaultMaxLogBackups
	}
	return maxBackups
}
