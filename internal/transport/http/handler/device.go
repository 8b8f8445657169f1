package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type deviceUsecaser interface {
	Register(ctx context.Context, userID, token, platform string) error
}

type DeviceHandler struct {
	uc     deviceUsecaser
	logger *slog.Logger
}

func NewDeviceHandler(uc deviceUsecaser, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{uc: uc, logger: logger.With("component", "device_handler")}
}

type registerDeviceRequest struct {
	Token    string `json:"token"    binding:"required,max=4096"`
	Platform string `json:"platform" binding:"required,oneof=ios android web"`
}

// Register stores a push token for the authenticated user.
func (h *DeviceHandler) Register(ctx *gin.Context) {
	var req registerDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.uc.Register(ctx.Request.Context(), ctx.GetString("userID"), req.Token, req.Platform); err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "register device", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.Status(http.StatusNoContent)
}
