package session

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00M"},
		{-time.Hour, "00M"},
		{5 * time.Minute, "05M"},
		{59*time.Minute + 59*time.Second, "59M"},
		{2*time.Hour + 30*time.Minute, "02H 30M"},
		{24 * time.Hour, "01D 00H 00M"},
		{26*time.Hour + 7*time.Minute, "01D 02H 07M"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
