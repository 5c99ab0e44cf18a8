package types

import "time"

// LogEntry represents a request log entry to be stored in the database
type LogEntry struct {
	ID           uint
	Method       string
	Path         string
	StatusCode   int
	LatencyMS    int64
	IPAddress    string
	UserAgent    string
	Username     string
	RequestBody  string
	ResponseBody string
	CreatedAt    time.Time
}
