package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	for in, want := range map[string]string{
		"debug":   "debug",
		"WARN":    "warn",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	} {
		SetLevel(in)
		assert.Equal(t, want, GetLevel(), "SetLevel(%q)", in)
	}
}

func TestJSONOutputHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "json", "warn")
	defer Configure(&bytes.Buffer{}, "text", "info")

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown 2", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
}
