package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"nyaya-backend/internal/shared/server/respond"
	"nyaya-backend/internal/shared/telemetry"
)

// Recovery turns a panic in a handler into a 500 error body and a log line tied to
// the request and, when the handler had read it, the case under review. Nothing is
// written once the response has started, as after a WebSocket upgrade.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			caseID, _ := c.Get("caseId")
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"case_id":    caseID,
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
