package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatOf tests container family detection from extensions
func TestFormatOf(t *testing.T) {
	tests := []struct {
		path     string
		expected FileFormat
	}{
		{"song.mp3", FormatMP3},
		{"song.MP3", FormatMP3},
		{"/music/song.flac", FormatFLAC},
		{"song.m4a", FormatM4A},
		{"song.ogg", FormatOther},
		{"song.wav", FormatOther},
		{"song", FormatOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatOf(tt.path), tt.path)
	}
}

// TestNotRecognized tests the failure constructor
func TestNotRecognized(t *testing.T) {
	result := NotRecognized("no match")
	assert.False(t, result.Recognized)
	assert.Equal(t, "no match", result.Reason)
	assert.Empty(t, result.AcoustID)
}
