package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zoobzio/chainz"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(Options{Level: "debug", Format: FormatJSON}, &buf)

	chain := chainz.New(func(_ context.Context) (int, error) {
		return 1, nil
	}).Log(Zerolog(log, zerolog.InfoLevel), "creating", "created")
	defer chain.Close()

	_, err := chain.Do(context.Background())
	require.NoError(t, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "creating", lines[0]["message"])
	assert.Equal(t, "created", lines[1]["message"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, ComponentChain, lines[0][FieldComponent])
}

func TestZerologLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(Options{Level: "warn"}, &buf)

	Zerolog(log, zerolog.DebugLevel)("hidden")
	Zerolog(log, zerolog.WarnLevel)("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestZerologError(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(Options{}, &buf)

	chain := chainz.New(func(_ context.Context) (int, error) {
		return 0, errors.New("service unavailable")
	}).TrapAndLog(ZerologError(log))
	defer chain.Close()

	_, err := chain.Do(context.Background())
	require.NoError(t, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "service unavailable", lines[0]["error"])
}

func TestNewZerologConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(Options{Format: FormatConsole, NoColor: true}, &buf)
	Zerolog(log, zerolog.InfoLevel)("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "INF")
}

func TestZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	chain := chainz.New(func(_ context.Context) (int, error) {
		return 0, errors.New("boom")
	}).TrapLogThrow(ZapError(log)).Log(Zap(log, zapcore.InfoLevel), "start", "end")
	defer chain.Close()

	_, err := chain.Do(context.Background())
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "start", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, ComponentChain, entries[0].ContextMap()[FieldComponent])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestZapLevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := Zap(zap.New(core), zapcore.DebugLevel)
	sink("quiet")
	assert.Equal(t, 0, logs.Len())
}
