package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/fileupload/storage"
	"github.com/cppla/fileupload/utils"
)

// HealthController reports whether the storage backend is reachable.
type HealthController struct {
	store storage.Store
}

// NewHealthController creates a new HealthController instance.
func NewHealthController(store storage.Store) *HealthController {
	return &HealthController{store: store}
}

// GetHealth pings the backend with a short deadline.
func (h *HealthController) GetHealth(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(pingCtx); err != nil {
		utils.Sugar.Warnw("storage ping failed", "driver", h.store.Driver(), "error", err)
		utils.Fail(ctx, http.StatusServiceUnavailable, "Storage unavailable", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "storage": h.store.Driver()})
}
