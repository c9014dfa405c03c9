package blockindex

import (
	"github.com/btcsuite/btclog/v2"
	"github.com/malandro0/bitcoin/build"
)

// Subsystem defines the logging code for this subsystem.
const Subsystem = "BIDX"

// log is the package logger. init sets it to a subsystem logger from
// build.NewSubLogger, which writes to stdout at the info level.
var log btclog.Logger

// By default the package logs through its build.NewSubLogger subsystem
// logger.
func init() {
	UseLogger(build.NewSubLogger(Subsystem))
}

// DisableLog disables all library log output. Logging output is enabled by
// default, through the subsystem logger installed by init.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info. This
// should be used in preference to setting the package-level log variable
// directly.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Log returns the package's current logger, so a debug-level aggregator can
// query or adjust it without reaching into the unexported package variable.
func Log() btclog.Logger {
	return log
}
