package log

import (
	"time"
)

// Log is a persisted HTTP request log row, written asynchronously by the
// request logging middleware.
type Log struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Method     string `gorm:"type:varchar(10);not null" json:"method"`
	Path       string `gorm:"type:varchar(2048);not null" json:"path"`
	StatusCode int    `gorm:"not null" json:"status_code"`
	LatencyMS  int64  `gorm:"not null" json:"latency_ms"`

	IPAddress string `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string `gorm:"type:varchar(512)" json:"user_agent"`
	Username  string `gorm:"type:varchar(150)" json:"username"`

	RequestBody  string `gorm:"type:text" json:"request_body"`
	ResponseBody string `gorm:"type:text" json:"response_body"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
