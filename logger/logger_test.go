package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staffgrid.log")
	l, err := New(Config{Level: "debug", Format: JSONFormat, File: path})
	require.NoError(t, err)

	l.Debug("grid rebuilt", zap.Int("bars", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Contains(string(data), `"msg":"grid rebuilt"`)
	assert.Contains(string(data), `"bars":3`)
	assert.True(l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDefaultsToInfo(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.False(l.Core().Enabled(zapcore.DebugLevel))
	assert.True(l.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsBadConfig(t *testing.T) {
	assert := assert.New(t)
	_, err := New(Config{Level: "loud"})
	assert.Error(err)
	_, err = New(Config{Format: "xml"})
	assert.Error(err)
}

func TestOrNop(t *testing.T) {
	assert := assert.New(t)
	assert.NotNil(OrNop(nil))
	l := zap.NewExample()
	assert.Same(l, OrNop(l))
}
