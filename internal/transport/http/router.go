package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/dosepilot/reminder-service/internal/repository"
	"github.com/dosepilot/reminder-service/internal/transport/http/handler"
	"github.com/dosepilot/reminder-service/internal/transport/http/middleware"
)

func NewRouter(
	logger *slog.Logger,
	reminderHandler *handler.ReminderHandler,
	deviceHandler *handler.DeviceHandler,
	userRepo repository.UserRepository,
	hmacKey []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(hmacKey)
	ensureUser := middleware.EnsureUser(userRepo, logger)

	// Everything is per-user; there are no public routes beyond health/metrics,
	// which live on the ops server.
	api := r.Group("", authMW, ensureUser)
	api.POST("/schedule-reminders", reminderHandler.ScheduleReminders)
	api.POST("/send-test", reminderHandler.SendTest)
	api.DELETE("/reminders/:id", reminderHandler.CancelReminder)
	api.DELETE("/reminders", reminderHandler.ClearReminders)
	api.GET("/deliveries", reminderHandler.ListDeliveries)
	api.POST("/devices", deviceHandler.Register)

	return r
}
