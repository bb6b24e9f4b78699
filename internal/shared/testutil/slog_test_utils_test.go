package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler_CapturesRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("pipeline started", slog.String("stage", "ingest"))
	logger.Error("pipeline failed", slog.Int("code", 500))

	require.Len(t, handler.GetRecords(), 2)
	assert.True(t, handler.ContainsMessage("pipeline started"))
	assert.True(t, handler.ContainsAttr("stage", "ingest"))
	assert.False(t, handler.ContainsAttr("stage", "report"))
}

func TestBufferedSlogHandler_FiltersByLevel(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	assert.Equal(t, 4, handler.Count())
}

func TestBufferedSlogHandler_WithPreservesBuffer(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With(slog.String("component", "cleaner")).Info("dropped duplicates", slog.Int("rows", 3))

	records := handler.GetRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "cleaner", records[0].Attrs["component"])
	assert.EqualValues(t, 3, records[0].Attrs["rows"])
}

func TestBufferedSlogHandler_Clear(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("message 1")
	logger.Info("message 2")
	require.Equal(t, 2, handler.Count())

	handler.Clear()
	assert.Equal(t, 0, handler.Count())
}

func TestBufferedSlogHandler_AssertionHelpers(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("analysis stored", slog.String("component", "session_store"))
	logger.Warn("session evicted", slog.Int("capacity", 10))

	AssertLogContains(t, handler, slog.LevelInfo, "analysis stored")
	AssertLogAttr(t, handler, "component", "session_store")
	AssertNoErrors(t, handler)
}

func TestBufferedSlogHandler_ConcurrentUse(t *testing.T) {
	logger, handler := NewTestLogger(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("concurrent log", slog.Int("goroutine", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, handler.Count())
}
