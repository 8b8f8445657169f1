package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/repository"
	"golang.org/x/time/rate"
)

// PushDispatcher sends reminders through an FCM-style HTTP push gateway. The
// gateway owns delivery semantics; we only report its verdict. Sends are
// rate-limited so a large rehydration burst cannot hammer the gateway.
type PushDispatcher struct {
	client     *http.Client
	devices    repository.DeviceRepository
	gatewayURL string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewPushDispatcher(devices repository.DeviceRepository, gatewayURL, apiKey string, timeout time.Duration, perSec float64, burst int, logger *slog.Logger) *PushDispatcher {
	return &PushDispatcher{
		client:     &http.Client{Timeout: timeout},
		devices:    devices,
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(perSec), burst),
		logger:     logger.With("component", "push_dispatcher"),
	}
}

type pushMessage struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type pushResponse struct {
	MessageID string `json:"message_id"`
}

func (d *PushDispatcher) Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) Outcome {
	device, err := d.devices.FindByUser(ctx, userID)
	if err != nil {
		return failed(ChannelPush, fmt.Errorf("find device: %w", err))
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return failed(ChannelPush, fmt.Errorf("rate limit wait: %w", err))
	}

	msg := pushMessage{
		To:           device.Token,
		Notification: pushNotification{Title: "Medication Reminder", Body: reminderBody(med, rem)},
		Data: map[string]string{
			"reminder_id":   rem.ID,
			"medication_id": med.ID,
		},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return failed(ChannelPush, fmt.Errorf("marshal push message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return failed(ChannelPush, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return failed(ChannelPush, fmt.Errorf("do request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(ChannelPush, fmt.Errorf("gateway status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var pr pushResponse
	_ = json.Unmarshal(body, &pr) // message_id is optional in the gateway reply
	return Outcome{Delivered: true, Channel: ChannelPush, MessageID: pr.MessageID}
}

func reminderBody(med domain.Medication, rem domain.Reminder) string {
	body := fmt.Sprintf("Time to take %s (%s %s)", med.Name, med.Dosage, med.Units)
	if rem.Notes != nil && *rem.Notes != "" {
		body += " — " + *rem.Notes
	}
	return body
}
