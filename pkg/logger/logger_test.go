package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l, err := New(Config{
		Level:       level,
		Environment: "production",
		Encoding:    "json",
		Output:      &buf,
	})
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestLogger_Fields(t *testing.T) {
	l, buf := newBufferLogger(t, InfoLevel)

	l.WithComponent("records").WithRecordID(7).WithRequestID("req-1").Info("stored")
	l.Debug("filtered out")
	require.NoError(t, l.Sync())

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "stored", entries[0]["msg"])
	assert.Equal(t, "records", entries[0]["component"])
	assert.Equal(t, float64(7), entries[0]["record_id"])
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestWatermillAdapter(t *testing.T) {
	l, buf := newBufferLogger(t, DebugLevel)
	adapter := NewWatermillAdapter(l)

	adapter.With(watermill.LogFields{"topic": "records"}).Info("subscribed", watermill.LogFields{"n": 1})
	adapter.Error("handler failed", errors.New("boom"), nil)
	adapter.Trace("tick", nil)
	require.NoError(t, l.Sync())

	entries := decodeLines(t, buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "records", entries[0]["topic"])
	assert.Equal(t, "watermill", entries[0]["component"])
	assert.Equal(t, "boom", entries[1]["error"])
	assert.Equal(t, "debug", entries[2]["level"])
}
