package utils

import (
	"encoding/json"
	"strings"
	"time"

	"richman-tours/types"

	"github.com/gofiber/fiber/v2"
)

// ClientIP returns the originating client address, preferring the first entry
// of X-Forwarded-For when the app sits behind a proxy.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	return c.IP()
}

// sanitizeRequestBody sanitizes request body for file uploads and large content
func sanitizeRequestBody(c *fiber.Ctx) string {
	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		formData := make(map[string]interface{})

		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}

			for key, files := range form.File {
				fileInfo := make([]map[string]interface{}, len(files))
				for i, file := range files {
					fileInfo[i] = map[string]interface{}{
						"filename": file.Filename,
						"size":     file.Size,
						"content":  "[FILE_CONTENT_REMOVED]",
					}
				}
				formData[key] = fileInfo
			}
		}

		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := string(c.Body())

	// Never persist raw passwords from login payloads.
	if strings.Contains(body, "password") {
		return "[BODY_WITH_CREDENTIALS_REMOVED]"
	}

	if len(body) > 4096 {
		return body[:4096] + "...[TRUNCATED]"
	}
	return body
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// the async request logger.
func CreateSanitizedLogEntry(c *fiber.Ctx, username string, latency time.Duration) types.LogEntry {
	// Deep copy to prevent fasthttp buffer reuse issues.
	method := string([]byte(c.Method()))
	path := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))
	if len(responseBody) > 4096 {
		responseBody = responseBody[:4096] + "...[TRUNCATED]"
	}

	return types.LogEntry{
		Method:       method,
		Path:         path,
		StatusCode:   c.Response().StatusCode(),
		LatencyMS:    latency.Milliseconds(),
		IPAddress:    ClientIP(c),
		UserAgent:    string([]byte(c.Get("User-Agent"))),
		Username:     username,
		RequestBody:  requestBody,
		ResponseBody: responseBody,
		CreatedAt:    time.Now(),
	}
}
