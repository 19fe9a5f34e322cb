package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("pipeline", &buf)

	l.Debug("скрыто %d", 1)
	l.Info("seed=%d", 1337)

	out := buf.String()
	assert.NotContains(t, out, "скрыто", "DEBUG не должен попадать в консоль по умолчанию")
	assert.Contains(t, out, "[INFO] [pipeline] seed=1337")

	buf.Reset()
	l.SetConsoleLevel(TRACE)
	l.Trace("tick")
	assert.Contains(t, buf.String(), "[TRACE] [pipeline] tick")
}

func TestLoggerManager_FileLogger(t *testing.T) {
	dir := t.TempDir()
	SetLogDir(dir)
	defer SetLogDir("logs")

	lm := NewLoggerManager()
	l, err := lm.GetLogger("viewer")
	require.NoError(t, err)

	same, err := lm.GetLogger("viewer")
	require.NoError(t, err)
	assert.Same(t, l, same, "повторный запрос должен вернуть тот же логгер")

	l.Debug("chunk %s", "(1,2)")
	require.NoError(t, lm.SetLogLevel("viewer", WARN, DEBUG))
	assert.Error(t, lm.SetLogLevel("missing", WARN, DEBUG))
	assert.Equal(t, []string{"viewer"}, lm.ListComponents())
	require.NoError(t, lm.CloseAll())

	files, err := filepath.Glob(filepath.Join(dir, "viewer_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [viewer] chunk (1,2)")
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
