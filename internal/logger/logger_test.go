package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		base = newBase()
	})

	require.NoError(t, Configure("debug", "json"))
	assert.True(t, IsLevelEnabled(logrus.DebugLevel))

	WithName("storage").WithField("path", "/tmp/db").Info("opened")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "storage", entry["component"])
	assert.Equal(t, "/tmp/db", entry["path"])
	assert.Equal(t, "opened", entry["msg"])
}

func TestConfigureRejectsUnknownValues(t *testing.T) {
	t.Cleanup(func() {
		base = newBase()
	})

	assert.Error(t, Configure("loud", ""))
	assert.Error(t, Configure("", "xml"))
}
