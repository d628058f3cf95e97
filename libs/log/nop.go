package log

import (
	"github.com/rs/zerolog"
)

// NewNopLogger returns a Logger that drops everything. Components default
// to it when no logger is given.
func NewNopLogger() Logger {
	return &defaultLogger{
		Logger: zerolog.Nop(),
	}
}
