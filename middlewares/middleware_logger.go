package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
			"path":      path,
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		entry.Info("request handled")
	}
}

// AdminAuditLogger mencatat setiap perubahan katalog oleh admin
func AdminAuditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" {
			return
		}
		userID, _ := c.Get("userID")
		fields := logrus.Fields{
			"admin_id": userID,
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"menu_id":  c.Param("menu_id"),
			"status":   c.Writer.Status(),
		}
		if c.Writer.Status() < 400 {
			utils.InfoLogger.WithFields(fields).Info("Perubahan katalog berhasil")
		} else {
			utils.ErrorLogger.WithFields(fields).Error("Perubahan katalog gagal")
		}
	}
}
