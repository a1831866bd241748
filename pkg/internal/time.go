package internal

import "time"

// ISO8601 formats t in UTC for reports.
func ISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
