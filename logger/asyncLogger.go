package logger

import (
	"log"

	log_model "richman-tours/models/log"
	"richman-tours/types"

	"gorm.io/gorm"
)

type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100), // Buffered channel to hold log entries
	}
}

// ProcessLog drains the channel and persists entries; run it in a goroutine.
func (logger *AsyncLogger) ProcessLog() {
	log.Println("Starting asynchronous logger...")

	for logEntry := range logger.channel {
		dbLog := log_model.Log{
			Method:       logEntry.Method,
			Path:         logEntry.Path,
			StatusCode:   logEntry.StatusCode,
			LatencyMS:    logEntry.LatencyMS,
			IPAddress:    logEntry.IPAddress,
			UserAgent:    logEntry.UserAgent,
			Username:     logEntry.Username,
			RequestBody:  logEntry.RequestBody,
			ResponseBody: logEntry.ResponseBody,
			CreatedAt:    logEntry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			log.Printf("Failed to insert new log entry: %v", err)
		}
	}
}

// Log pushes a log entry into the channel
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	logger.channel <- entry
}
