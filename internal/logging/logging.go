// Package logging builds the service's zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger on stderr for development and a JSON
// production logger otherwise.
func New(development bool, level string) (*zap.Logger, error) {
	var conf zap.Config
	if development {
		conf = zap.NewDevelopmentConfig()
		conf.OutputPaths = []string{"stderr"}
		conf.ErrorOutputPaths = []string{"stderr"}
	} else {
		conf = zap.NewProductionConfig()
		conf.Encoding = "json"
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.DisableStacktrace = lvl > zapcore.DebugLevel

	logger, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
