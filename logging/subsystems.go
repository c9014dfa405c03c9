// Package logging aggregates every package's subsystem logger behind a
// single build.LeveledSubLogger, the same shape as lnd's top-level log.go
// subsystemLoggers map, so a single debug-level string can configure the
// whole module without each package having to know about the others.
package logging

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btclog/v2"
	"github.com/malandro0/bitcoin/blockchain"
	"github.com/malandro0/bitcoin/blockindex"
	"github.com/malandro0/bitcoin/build"
)

// Subsystems implements build.LeveledSubLogger over every package that
// registers a subsystem logger through build.NewSubLogger.
type Subsystems struct{}

// SubLoggers returns the map of all registered subsystem loggers.
func (Subsystems) SubLoggers() build.SubLoggers {
	return build.SubLoggers{
		blockchain.Subsystem: blockchain.Log(),
		blockindex.Subsystem: blockindex.Log(),
	}
}

// SupportedSubsystems returns a sorted slice of the known subsystem IDs.
func (s Subsystems) SupportedSubsystems() []string {
	loggers := s.SubLoggers()
	ids := make([]string, 0, len(loggers))
	for id := range loggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetLogLevel assigns an individual subsystem logger a new log level.
// Invalid subsystems are ignored.
func (s Subsystems) SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := s.SubLoggers()[subsystemID]
	if !ok {
		return
	}

	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	logger.SetLevel(level)
}

// SetLogLevels assigns all subsystem loggers the same new log level.
func (s Subsystems) SetLogLevels(logLevel string) {
	for id := range s.SubLoggers() {
		s.SetLogLevel(id, logLevel)
	}
}

// ParseAndSetDebugLevels parses a "subsystemid=level,..." debug string, the
// same format lnd accepts on its --debuglevel flag, and applies it to every
// registered subsystem logger.
func ParseAndSetDebugLevels(level string) error {
	if err := build.ParseAndSetDebugLevels(level, Subsystems{}); err != nil {
		return fmt.Errorf("invalid debug level %q: %w", level, err)
	}
	return nil
}
