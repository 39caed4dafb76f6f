package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// requestLogging logs every request except the health probe, which would
// otherwise flood the log on hosted deployments that poll it.
func requestLogging(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		startTime := time.Now()

		reqLogger := logger.With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Logger()

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = reqLogger.Error()
		case status >= 400:
			event = reqLogger.Warn()
		default:
			event = reqLogger.Info()
		}

		event.
			Int("status", status).
			Dur("duration", time.Since(startTime)).
			Msg("Request completed")

		for _, err := range c.Errors {
			reqLogger.Error().Err(err.Err).Msg("Request error")
		}
	}
}
