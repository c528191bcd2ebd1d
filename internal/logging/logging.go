// Package logging builds the process-wide zap logger.
package logging

import "go.uber.org/zap"

// New returns a sugared logger: human-readable in debug mode, JSON otherwise.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
