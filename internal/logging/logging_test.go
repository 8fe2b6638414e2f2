package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestFromCoreWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var l Logger = FromCore(core)
	l = With(l, "run_id", "abc")

	l.Info("processed file", "file", "a.json", "rows", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "processed file", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["run_id"])
	assert.Equal(t, "a.json", fields["file"])
	assert.EqualValues(t, 3, fields["rows"])
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	l.Debug("hello", "k", "v")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestWithLeavesPlainLoggers(t *testing.T) {
	n := Nop()
	assert.Equal(t, n, With(n, "a", 1))
}
