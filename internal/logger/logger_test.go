package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/VijayGit-Hub/menu-upload-system/internal/logger"
)

func TestNew(t *testing.T) {
	t.Run("Development", func(t *testing.T) {
		l, err := logger.New("debug", false)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Production", func(t *testing.T) {
		l, err := logger.New("warn", true)
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Некорректный уровень", func(t *testing.T) {
		_, err := logger.New("loud", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "некорректный уровень логирования")
	})
}
