package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(buf, &Config{LogFormat: "json"}, "dashboard")
	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "dashboard", entry["service"])
	assert.Contains(t, entry, "source")
}

func TestNewLoggerText(t *testing.T) {
	buf := &bytes.Buffer{}
	newLogger(buf, nil, "").Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
