package event

import (
	"context"
	"strings"
	"time"

	"agrobot-intelligence/internal/models"

	"github.com/google/uuid"
)

const DefaultAlertQueue = "farm_alert_events"

// AlertEvent is the message fanned out for every critical or warning alert
// raised by a refresh cycle.
type AlertEvent struct {
	EventID          string               `json:"event_id"`
	CycleID          string               `json:"cycle_id"`
	Priority         models.AlertPriority `json:"priority"`
	Title            string               `json:"title"`
	Message          string               `json:"message"`
	Action           string               `json:"action,omitempty"`
	Location         models.FarmLocation  `json:"location"`
	ReadingTimestamp string               `json:"reading_timestamp,omitempty"`
	OccurredAt       time.Time            `json:"occurred_at"`
}

func NewAlertEvent(cycleID string, alert models.Alert, location models.FarmLocation, readingTimestamp string) AlertEvent {
	return AlertEvent{
		EventID:          uuid.NewString(),
		CycleID:          cycleID,
		Priority:         alert.Priority,
		Title:            alert.Title,
		Message:          alert.Message,
		Action:           alert.Action,
		Location:         location,
		ReadingTimestamp: readingTimestamp,
		OccurredAt:       time.Now(),
	}
}

// Fingerprint identifies the same condition across cycles. Messages carry
// live values, so only priority and title are used.
func (e AlertEvent) Fingerprint() string {
	return string(e.Priority) + ":" + strings.ToLower(strings.ReplaceAll(e.Title, " ", "_"))
}

type AlertPublisher interface {
	PublishAlert(ctx context.Context, event AlertEvent) error
}

// PublisherStats reports publish counters.
type PublisherStats struct {
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
}
