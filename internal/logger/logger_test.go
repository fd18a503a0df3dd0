package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[INF]")
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	log.SetLevel(LevelVerbose)
	log.Debug("now visible")
	assert.Contains(t, buf.String(), "[DBG]")
	assert.Equal(t, LevelVerbose, log.GetLevel())

	buf.Reset()
	log.SetLevel(LevelOff)
	log.Error("nothing")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelNormal, false},
		{"normal", LevelNormal, false},
		{"OFF", LevelOff, false},
		{"verbose", LevelVerbose, false},
		{"debug", LevelVerbose, false},
		{"loud", LevelNormal, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
