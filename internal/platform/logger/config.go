package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects the level, the encoding (json or console) and the sink.
// An OutputFile other than stdout/stderr is written in addition to stdout.
type LoggerConfig struct {
	Level      string
	Format     string
	OutputFile string
}

// BootstrapConfig is used until the service configuration has been loaded.
func BootstrapConfig() *LoggerConfig {
	return &LoggerConfig{Level: "info", Format: "json", OutputFile: "stdout"}
}

func (c *LoggerConfig) zapLevel() zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(c.Level))
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
