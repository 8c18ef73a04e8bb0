package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox/payloads"
)

const notificationConsumerName = "notifications-worker"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns published transition events into in-app notification rows.
type Consumer struct {
	repo         creator
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo creator, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("event subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.Attributes["event_type"], msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, eventTypeAttr string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_type": eventTypeAttr,
	})

	eventType, err := enums.ParseOutboxEventType(eventTypeAttr)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", envelope.EventID)

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	rows, err := buildNotifications(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notifications", err)
		_ = c.idempotency.Delete(ctx, notificationConsumerName, eventID)
		return processResult{nack: true}
	}

	for _, row := range rows {
		if err := c.repo.Create(ctx, row); err != nil {
			c.logg.Error(logCtx, "failed to persist notification", err)
			_ = c.idempotency.Delete(ctx, notificationConsumerName, eventID)
			return processResult{nack: true}
		}
	}

	c.logg.Info(logCtx, "event turned into notifications")
	return processResult{ack: true}
}

// buildNotifications maps one decoded event to the notification rows it
// produces. An event can fan out to several users (gig deletion) or to none.
func buildNotifications(eventType enums.OutboxEventType, data json.RawMessage) ([]*models.Notification, error) {
	switch eventType {
	case enums.EventApplicationCreated:
		var payload payloads.ApplicationCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []*models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypeApplicationUpdate,
			Title:   "Application submitted",
			Message: fmt.Sprintf("Your application for %q was received.", payload.GigTitle),
			Link:    gigLink(payload.GigID),
		}}, nil

	case enums.EventApplicationStatusChanged:
		var payload payloads.ApplicationStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []*models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypeApplicationUpdate,
			Title:   statusTitle(payload.Status),
			Message: fmt.Sprintf("Your application for %q moved from %s to %s.", payload.GigTitle, payload.PreviousStatus, payload.Status),
			Link:    gigLink(payload.GigID),
		}}, nil

	case enums.EventWorkSubmitted:
		var payload payloads.WorkSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []*models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypeApplicationUpdate,
			Title:   "Work submitted",
			Message: fmt.Sprintf("Your submission for %q was received and the gig is marked completed.", payload.GigTitle),
			Link:    gigLink(payload.GigID),
		}}, nil

	case enums.EventWithdrawalRequested:
		var payload payloads.WithdrawalRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []*models.Notification{{
			UserID:  payload.UserID,
			Type:    enums.NotificationTypeApplicationUpdate,
			Title:   "Withdrawal requested",
			Message: fmt.Sprintf("Your payout request for %q is pending.", payload.GigTitle),
			Link:    gigLink(payload.GigID),
		}}, nil

	case enums.EventGigCreated:
		var payload payloads.GigCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return []*models.Notification{{
			UserID:  payload.PostedBy,
			Type:    enums.NotificationTypeGigAlert,
			Title:   "Gig published",
			Message: fmt.Sprintf("Your gig %q at %s is now live.", payload.Title, payload.Company),
			Link:    gigLink(payload.GigID),
		}}, nil

	case enums.EventGigDeleted:
		var payload payloads.GigDeletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		rows := make([]*models.Notification, 0, len(payload.ApplicantIDs))
		for _, userID := range payload.ApplicantIDs {
			rows = append(rows, &models.Notification{
				UserID:  userID,
				Type:    enums.NotificationTypeGigAlert,
				Title:   "Gig removed",
				Message: fmt.Sprintf("The gig %q you applied to was removed.", payload.Title),
			})
		}
		return rows, nil

	default:
		return nil, nil
	}
}

func statusTitle(status enums.ApplicationStatus) string {
	switch status {
	case enums.ApplicationStatusShortlisted:
		return "You were shortlisted"
	case enums.ApplicationStatusAccepted:
		return "You were accepted"
	case enums.ApplicationStatusRejected:
		return "Application update"
	case enums.ApplicationStatusCompleted:
		return "Gig completed"
	default:
		return "Application update"
	}
}

func gigLink(gigID uuid.UUID) *string {
	link := fmt.Sprintf("/gigs/%s", gigID)
	return &link
}
