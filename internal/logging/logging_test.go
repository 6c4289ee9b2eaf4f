package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", "text", nil).GetLevel())
	assert.Equal(t, logrus.WarnLevel, New("warn", "text", nil).GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("nonsense", "text", nil).GetLevel())
}

func TestLogErrorWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	LogError(logger, "source", "Movements", "query KARDEX", map[string]int{"rows": 3}, errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "source", entry["module"])
	assert.Equal(t, "Movements", entry["funcName"])
	assert.Equal(t, "query KARDEX", entry["context"])
	assert.Contains(t, entry, "data")
}
