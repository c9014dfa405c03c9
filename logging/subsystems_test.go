package logging

import (
	"testing"

	"github.com/btcsuite/btclog/v2"
	"github.com/malandro0/bitcoin/blockchain"
	"github.com/malandro0/bitcoin/blockindex"
	"github.com/stretchr/testify/require"
)

func TestSubsystemsSupportedSubsystems(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"BIDX", "VBIT"}, Subsystems{}.SupportedSubsystems())
}

func TestParseAndSetDebugLevelsGlobal(t *testing.T) {
	err := ParseAndSetDebugLevels("debug")
	require.NoError(t, err)
	require.Equal(t, btclog.LevelDebug, blockchain.Log().Level())
	require.Equal(t, btclog.LevelDebug, blockindex.Log().Level())
}

func TestParseAndSetDebugLevelsPerSubsystem(t *testing.T) {
	err := ParseAndSetDebugLevels("info,VBIT=trace,BIDX=warn")
	require.NoError(t, err)
	require.Equal(t, btclog.LevelTrace, blockchain.Log().Level())
	require.Equal(t, btclog.LevelWarn, blockindex.Log().Level())
}

func TestParseAndSetDebugLevelsRejectsUnknownSubsystem(t *testing.T) {
	err := ParseAndSetDebugLevels("bogus=debug")
	require.Error(t, err)
}

func TestParseAndSetDebugLevelsRejectsInvalidLevel(t *testing.T) {
	err := ParseAndSetDebugLevels("not-a-level")
	require.Error(t, err)
}
