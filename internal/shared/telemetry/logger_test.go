package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("flow.failed", map[string]any{"user_id": "u1", "error": errors.New("boom"), "msg": "shadowed"})

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "flow.failed", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.NotEmpty(t, entry["ts"])
}

func TestMarshalFailureStillLogs(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("bad", map[string]any{"ch": make(chan int)})
	assert.Contains(t, buf.String(), "logger marshal failed")
}
