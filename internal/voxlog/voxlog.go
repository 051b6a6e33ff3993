// Package voxlog is the package-level logger used by the bench CLI (the
// core packages under pkg/ do not log): a zap.SugaredLogger behind the same terse, operational call
// sites a plain package-level log.Printf would use, with a structured
// backend.
package voxlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once sync.Once
	base *zap.Logger
	log  *zap.SugaredLogger
)

func init() {
	base, _ = zap.NewProduction()
	if base == nil {
		base = zap.NewNop()
	}
	log = base.Sugar()
}

// SetDevelopment swaps the backend for zap's human-readable development
// encoder, used by the bench CLI when run interactively.
func SetDevelopment() {
	once.Do(func() {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return
		}
		base = dev
		log = base.Sugar()
	})
}

// Infow logs an operational event with structured fields, e.g.
// Infow("painter pruned chunks", "op", id, "pruned", n).
func Infow(msg string, keysAndValues ...interface{}) {
	log.Infow(msg, keysAndValues...)
}

// Warnw logs a recoverable anomaly.
func Warnw(msg string, keysAndValues ...interface{}) {
	log.Warnw(msg, keysAndValues...)
}

// Sync flushes any buffered log entries; call before process exit.
func Sync() {
	_ = base.Sync()
}
