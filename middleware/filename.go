package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/fileupload/storage"
)

// SafeFilename rejects requests whose path parameter could point outside the storage
// directory.
func SafeFilename(param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := storage.ValidName(ctx.Param(param)); err != nil {
			ctx.String(http.StatusBadRequest, "Invalid filename")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
