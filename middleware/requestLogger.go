package middleware

import (
	"time"

	"richman-tours/logger"
	"richman-tours/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger persists every request through the async logger so the
// handler path never waits on the log table.
func RequestLogger(asyncLogger *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		entry := utils.CreateSanitizedLogEntry(c, Username(c), time.Since(start))
		asyncLogger.Log(entry)
		return err
	}
}
