package middleware

import (
	"time"

	"github.com/filestore/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const requestIDKey = "requestID"

// RequestLogger writes one structured line per request and tags the
// response with its request id.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		c.Locals(requestIDKey, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()
		settle(c, err)

		statusCode := c.Response().StatusCode()
		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   statusCode,
			"latency_ms":    time.Since(start).Milliseconds(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"ip":            c.IP(),
			"request_body":  logger.GetRequestBodySummary(c),
			"response_body": logger.GetResponseSizeSummary(c),
			"request_id":    requestID,
		}

		userID := logger.GetUserIDFromContext(c)
		switch {
		case userID != nil && statusCode >= 500:
			logger.ErrorWithUser(*userID, "http_request", err, details)
		case userID != nil && statusCode >= 400:
			logger.WarnWithUser(*userID, "http_request", details)
		case userID != nil:
			logger.InfoWithUser(*userID, "http_request", details)
		case statusCode >= 500:
			logger.Error("http_request", err, details)
		case statusCode >= 400:
			logger.Warn("http_request", details)
		default:
			logger.Info("http_request", details)
		}

		return nil
	}
}

var securityReasons = map[int]string{
	fiber.StatusForbidden: "access_denied",
	fiber.StatusNotFound:  "not_found",
}

// SecurityLogger records denied and not-found responses separately so
// probing for other users' files shows up in the logs.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		settle(c, c.Next())

		reason, ok := securityReasons[c.Response().StatusCode()]
		if !ok {
			return nil
		}

		userID := logger.GetUserIDFromContext(c)
		details := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
			"reason": reason,
		}
		if userID != nil {
			logger.WarnWithUser(*userID, reason, details)
		} else {
			logger.Warn(reason+"_unauthenticated", details)
		}

		return nil
	}
}

// settle renders a handler error through the app's error handler so the
// status logged is the status sent.
func settle(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

func GetRequestID(c *fiber.Ctx) string {
	if value, ok := c.Locals(requestIDKey).(string); ok {
		return value
	}
	return ""
}
