package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/usecase"
)

// reminderUsecaser is the slice of the reminder usecase the handler calls.
type reminderUsecaser interface {
	ScheduleAll(ctx context.Context, input usecase.ScheduleAllInput) (int, error)
	CancelReminder(ctx context.Context, userID, reminderID string) error
	ClearUser(ctx context.Context, userID string) error
	SendTest(ctx context.Context, userID string) (string, error)
	Deliveries(ctx context.Context, userID string, limit int) ([]*domain.Delivery, error)
}

type ReminderHandler struct {
	uc     reminderUsecaser
	logger *slog.Logger
}

func NewReminderHandler(uc reminderUsecaser, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{uc: uc, logger: logger.With("component", "reminder_handler")}
}

type medicationPayload struct {
	ID        string     `json:"id"         binding:"required"`
	Name      string     `json:"name"       binding:"required,max=256"`
	Dosage    string     `json:"dosage"     binding:"required,max=64"`
	Units     string     `json:"units"      binding:"required,max=32"`
	Color     *string    `json:"color"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type reminderPayload struct {
	ID           string   `json:"id"            binding:"required"`
	MedicationID string   `json:"medication_id" binding:"required"`
	Time         string   `json:"time"          binding:"required"`
	Days         []string `json:"days"          binding:"required,min=1"`
	Enabled      bool     `json:"enabled"`
	Notes        *string  `json:"notes"`
}

type scheduleRemindersRequest struct {
	Medications []medicationPayload `json:"medications" binding:"required"`
	Reminders   []reminderPayload   `json:"reminders"   binding:"required"`
}

type scheduleRemindersResponse struct {
	Success        bool `json:"success"`
	ScheduledCount int  `json:"scheduled_count"`
}

type sendTestResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
}

type deliveryResponse struct {
	ID           string    `json:"id"`
	ReminderID   string    `json:"reminder_id"`
	MedicationID string    `json:"medication_id"`
	Channel      string    `json:"channel"`
	Delivered    bool      `json:"delivered"`
	Error        *string   `json:"error,omitempty"`
	FiredAt      time.Time `json:"fired_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// ScheduleReminders replaces the user's full reminder set with the submitted
// one. Idempotent: re-sending the same payload leaves the same jobs armed.
func (h *ReminderHandler) ScheduleReminders(ctx *gin.Context) {
	var req scheduleRemindersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meds := make([]domain.Medication, 0, len(req.Medications))
	for _, m := range req.Medications {
		meds = append(meds, domain.Medication{
			ID:        m.ID,
			Name:      m.Name,
			Dosage:    m.Dosage,
			Units:     m.Units,
			Color:     m.Color,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
		})
	}
	rems := make([]domain.Reminder, 0, len(req.Reminders))
	for _, r := range req.Reminders {
		rems = append(rems, domain.Reminder{
			ID:           r.ID,
			MedicationID: r.MedicationID,
			Time:         r.Time,
			Days:         r.Days,
			Enabled:      r.Enabled,
			Notes:        r.Notes,
		})
	}

	count, err := h.uc.ScheduleAll(ctx.Request.Context(), usecase.ScheduleAllInput{
		UserID:      ctx.GetString("userID"),
		Medications: meds,
		Reminders:   rems,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMissingUserID) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errMissingUserID})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "schedule reminders", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, scheduleRemindersResponse{
		Success:        true,
		ScheduledCount: count,
	})
}

// CancelReminder removes one reminder from storage and the live schedule.
func (h *ReminderHandler) CancelReminder(ctx *gin.Context) {
	reminderID := ctx.Param("id")

	err := h.uc.CancelReminder(ctx.Request.Context(), ctx.GetString("userID"), reminderID)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errReminderMissing})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "cancel reminder", "reminder_id", reminderID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearReminders drops everything for the user — logout or notifications off.
func (h *ReminderHandler) ClearReminders(ctx *gin.Context) {
	if err := h.uc.ClearUser(ctx.Request.Context(), ctx.GetString("userID")); err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "clear reminders", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// SendTest fires a synthetic notification through the real delivery chain.
func (h *ReminderHandler) SendTest(ctx *gin.Context) {
	messageID, err := h.uc.SendTest(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrDeliveryFailed) {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": errDeliveryFailed})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "send test notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, sendTestResponse{Success: true, MessageID: messageID})
}

// ListDeliveries returns the user's recent delivery attempts, newest first.
func (h *ReminderHandler) ListDeliveries(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	deliveries, err := h.uc.Deliveries(ctx.Request.Context(), ctx.GetString("userID"), limit)
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list deliveries", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]deliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, deliveryResponse{
			ID:           d.ID,
			ReminderID:   d.ReminderID,
			MedicationID: d.MedicationID,
			Channel:      d.Channel,
			Delivered:    d.Delivered,
			Error:        d.Error,
			FiredAt:      d.FiredAt,
			DurationMS:   d.DurationMS,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"deliveries": out})
}
