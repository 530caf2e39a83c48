package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"extra params", "https://www.youtube.com/watch?list=PL1&v=abc123&t=42s", "abc123", false},
		{"surrounding spaces", "  https://youtube.com/watch?v=xyz  ", "xyz", false},
		{"any non-empty id accepted", "https://youtube.com/watch?v=not-a-real-id!", "not-a-real-id!", false},
		{"missing v", "https://youtu.be/dQw4w9WgXcQ", "", true},
		{"empty v", "https://www.youtube.com/watch?v=", "", true},
		{"relative", "watch?v=abc", "", true},
		{"empty", "", "", true},
		{"garbage", "://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractYouTubeID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateVideoInput(t *testing.T) {
	assert.NoError(t, ValidateVideoInput("  dQw4w9WgXcQ ", "  Part 1\tof 2\n"))

	assert.ErrorIs(t, ValidateVideoInput("", "Sample"), ErrYouTubeIDRequired)
	assert.ErrorIs(t, ValidateVideoInput("   ", "Sample"), ErrYouTubeIDRequired)
	assert.ErrorIs(t, ValidateVideoInput("abc", "\t"), ErrTitleRequired)
	assert.ErrorIs(t, ValidateVideoInput("abc", "\x00\x07 "), ErrTitleRequired)
}
