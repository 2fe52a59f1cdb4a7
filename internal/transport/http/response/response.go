package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherauth/internal/transport/http/flash"
)

const ContextRequestIDKey = "request_id"

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Code:    httpStatus,
		Message: message,
		Data:    data,
	})
}

// Page renders an HTML template with pending flash notices plus any extra
// notices for this response only.
func Page(c *gin.Context, status int, name string, data gin.H, extra ...flash.Notice) {
	if data == nil {
		data = gin.H{}
	}
	notices, err := flash.Pop(c)
	if err != nil {
		slog.Warn("clear flash notices failed",
			"request_id", c.GetString(ContextRequestIDKey),
			"error", err)
	}
	data["Notices"] = append(notices, extra...)
	c.HTML(status, name, data)
}

// Redirect queues a notice and sends the client to location.
func Redirect(c *gin.Context, location, category, message string) {
	if err := flash.Add(c, category, message); err != nil {
		slog.Warn("save flash notice failed",
			"request_id", c.GetString(ContextRequestIDKey),
			"error", err)
	}
	c.Redirect(http.StatusFound, location)
}

// InternalError logs err and answers with a generic page.
func InternalError(c *gin.Context, op string, err error) {
	slog.Error(op+" failed",
		"request_id", c.GetString(ContextRequestIDKey),
		"path", c.Request.URL.Path,
		"error", err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Message": "Something went wrong. Please try again later.",
	})
}
