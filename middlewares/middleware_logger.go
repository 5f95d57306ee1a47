package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/metrics"
	"github.com/yeremiapane/comanda-app/utils"
)

const HeaderRequestID = "X-Request-ID"

// LoggerMiddleware logs every request and records its latency under the
// matched route template.
func LoggerMiddleware(m *metrics.ComandaMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		m.ObserveRequest(c.Request.Method, route, status, latency)

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency":    latency.String(),
		}
		if empresaID, ok := EmpresaID(c); ok {
			fields["empresa_id"] = empresaID.String()
		}
		if status >= 500 {
			utils.ErrorLogger.WithFields(fields).Error("request failed")
			return
		}
		utils.InfoLogger.WithFields(fields).Info("request")
	}
}
