package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/app/response"
	"github.com/docuquery/docuquery/pkg/i18n"
)

func I18n() gin.HandlerFunc {
	return response.ProvideResponseLocalizer(i18n.NewLocalizer(i18n.DEFAULT_LANG))
}

func Cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept-Language, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// ResponseTime observes per-route latency and counts non-2xx
// responses.
func ResponseTime(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := appCore.Metrics().ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			appCore.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), status)
		}
	}
}
