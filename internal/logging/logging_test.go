package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, setup(&buf, "warn", "json"))

	log.Info().Msg("dropped")
	log.Warn().Str("license_id", "l1").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "l1", line["license_id"])
	assert.Equal(t, "warn", line["level"])
}

func TestSetupRejectsUnknown(t *testing.T) {
	assert.Error(t, setup(&bytes.Buffer{}, "loud", "json"))
	assert.Error(t, setup(&bytes.Buffer{}, "info", "xml"))
}
