// Package logging wires up the single structured logger the command-line
// driver uses for its per-function debug line and for the warning it
// logs when a block fails to translate under --stop-on-error.
package logging

import "go.uber.org/zap"

// New builds a SugaredLogger: a development config (human-readable
// console output, debug level and above, caller line) in debug mode, a production config
// (JSON, info level and above) otherwise.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
