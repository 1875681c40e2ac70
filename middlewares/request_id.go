package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestID tags every request with an id and logs its outcome, so chain
// failures in the handlers can be correlated with the request that hit
// them.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)

		c.Next()

		if c.Writer.Status() >= 500 {
			log.WithFields(logrus.Fields{
				"request_id": id,
				"method":     c.Request.Method,
				"path":       c.FullPath(),
				"status":     c.Writer.Status(),
			}).Error("request failed")
		}
	}
}
