package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "cipher", "production", "")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "cipher", line["app"])

	buf.Reset()
	l = newLogger(&buf, "cipher", "development", "warn")
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l = newLogger(&buf, "cipher", "development", "loud")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "cipher", "production", "")
	buf.Reset()

	LogError(l, "commit failed", errors.New("boom"), logrus.Fields{"discord_user_id": 7})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "commit failed", line["msg"])
	assert.EqualValues(t, 7, line["discord_user_id"])
}
