package middleware

import (
	"runtime/debug"

	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery converts panics into a 500 envelope instead of killing the
// connection. An emergency backend must keep serving after a bad request.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"panic":     r,
					"stack":     string(debug.Stack()),
					"requestId": c.GetString("requestID"),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
				}).Error("Panic recovered")

				utils.InternalServerErrorResponse(c, "")
				c.Abort()
			}
		}()

		c.Next()
	}
}
