package types

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize formats a byte count with one decimal, e.g. "1.5 MB"
func FormatSize(bytes int64) string {
	size := float64(bytes)
	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}
