package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every JSON failure.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageResponse is a bare confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Message writes {"message": msg} with the given status.
func Message(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, MessageResponse{Message: msg})
}

// Fail writes a JSON error body carrying the raw error text when err is non-nil.
func Fail(ctx *gin.Context, status int, msg string, err error) {
	resp := ErrorResponse{Message: msg}
	if err != nil {
		resp.Error = err.Error()
	}
	ctx.JSON(status, resp)
}

// NotFound answers with a plain text 404.
func NotFound(ctx *gin.Context) {
	ctx.String(404, "File not found")
}
