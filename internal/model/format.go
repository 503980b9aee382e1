package model

import (
	"fmt"
	"time"
)

// FormatSeconds renders whole seconds as H:MM:SS. Hours are not capped.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatDuration renders a duration as H:MM:SS, truncated to the second
func FormatDuration(d time.Duration) string {
	return FormatSeconds(int64(d / time.Second))
}
