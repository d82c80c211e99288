package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"agencycms/internal/database"
	"agencycms/internal/tasks"
)

// NotifyTaskHandler consumes intake-notification tasks enqueued by the
// public contact and application endpoints.
type NotifyTaskHandler struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewNotifyTaskHandler builds the handler.
func NewNotifyTaskHandler(db *gorm.DB, notifier Notifier, logger *slog.Logger) *NotifyTaskHandler {
	return &NotifyTaskHandler{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleLeadNotify loads the lead and hands it to the notifier. A lead
// deleted before the task ran is not an error worth retrying.
func (h *NotifyTaskHandler) HandleLeadNotify(ctx context.Context, task *asynq.Task) error {
	var payload tasks.LeadNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal lead notify payload: %w", err)
	}

	logger := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("lead_id", uint64(payload.LeadID)),
	)

	var lead database.Lead
	if err := h.db.WithContext(ctx).First(&lead, payload.LeadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("lead vanished before notification")
			return nil
		}
		return fmt.Errorf("load lead %d: %w", payload.LeadID, err)
	}

	if err := h.notifier.NotifyLeadCreated(ctx, lead); err != nil {
		return fmt.Errorf("notify lead created: %w", err)
	}

	logger.Info("lead notification delivered")
	return nil
}

// HandleApplicationNotify loads the application and its job and hands
// them to the notifier.
func (h *NotifyTaskHandler) HandleApplicationNotify(ctx context.Context, task *asynq.Task) error {
	var payload tasks.ApplicationNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal application notify payload: %w", err)
	}

	logger := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("application_id", uint64(payload.ApplicationID)),
	)

	var application database.JobApplication
	if err := h.db.WithContext(ctx).First(&application, payload.ApplicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("application vanished before notification")
			return nil
		}
		return fmt.Errorf("load application %d: %w", payload.ApplicationID, err)
	}

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, application.JobID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load job %d: %w", application.JobID, err)
	}

	if err := h.notifier.NotifyApplicationReceived(ctx, application, job); err != nil {
		return fmt.Errorf("notify application received: %w", err)
	}

	logger.Info("application notification delivered")
	return nil
}
