package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"silent", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSubTagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").Sub("channel")

	log.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "channel", entry["subsystem"])
	assert.Equal(t, "hello", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug().Msg("dropped")
	log.Info().Msg("dropped too")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestSilentDisablesOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "silent")

	log.Error().Msg("nope")
	assert.Zero(t, buf.Len())
}
