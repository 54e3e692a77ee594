package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/learncore/internal/config"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learncore.log")
	log := New(config.Log{Level: "info", FilePath: path})
	log.Info("card reviewed")
	log.Debug("hidden")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"card reviewed"`)
	assert.False(t, strings.Contains(string(b), "hidden"))
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	log := New(config.Log{Level: "loud"})
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}
