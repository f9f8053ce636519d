package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampedName(t *testing.T) {
	now := time.Date(2024, 1, 31, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "png with extension",
			filename: "screenshot.png",
			want:     "screenshot_20240131_150405.png",
		},
		{
			name:     "no extension",
			filename: "capture",
			want:     "capture_20240131_150405",
		},
		{
			name:     "path components stripped",
			filename: "../../etc/passwd.png",
			want:     "passwd_20240131_150405.png",
		},
		{
			name:     "pdf export",
			filename: "page.pdf",
			want:     "page_20240131_150405.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timestampedName(tt.filename, now))
		})
	}
}
