package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse adalah amplop semua respons API
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError mengirim {status:false}; error 5xx juga dicatat ke ErrorLogger
func RespondError(c *gin.Context, code int, err error) {
	if code >= 500 && ErrorLogger != nil {
		ErrorLogger.WithField("path", c.FullPath()).WithError(err).Error("Request failed")
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}
