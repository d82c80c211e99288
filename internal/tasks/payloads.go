package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants shared by the queue producer and consumer.
const (
	TypeLeadNotify        = "notify:lead"
	TypeApplicationNotify = "notify:application"
)

// LeadNotifyPayload identifies a freshly submitted contact-form lead.
type LeadNotifyPayload struct {
	LeadID        uint   `json:"lead_id"`
	CorrelationID string `json:"correlation_id"`
}

// ApplicationNotifyPayload identifies a freshly submitted job application.
type ApplicationNotifyPayload struct {
	ApplicationID uint   `json:"application_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewLeadNotifyTask builds a notification task for a new lead.
func NewLeadNotifyTask(leadID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(LeadNotifyPayload{
		LeadID:        leadID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLeadNotify, payload), nil
}

// NewApplicationNotifyTask builds a notification task for a new application.
func NewApplicationNotifyTask(applicationID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ApplicationNotifyPayload{
		ApplicationID: applicationID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeApplicationNotify, payload), nil
}
