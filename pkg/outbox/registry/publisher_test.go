package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/pkg/config"
	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{NotificationTopic: "gig-notification-events"})
	if err != nil {
		t.Fatalf("registry build failed: %v", err)
	}
	return reg
}

func buildRow(t *testing.T, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, data interface{}) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   uuid.New(),
		Payload:       payloadJSON,
	}
}

func TestResolveDecodesTypedPayload(t *testing.T) {
	reg := testRegistry(t)
	userID := uuid.New()
	row := buildRow(t, enums.EventApplicationStatusChanged, enums.AggregateApplication, payloads.ApplicationStatusChangedEvent{
		UserID:         userID,
		GigID:          uuid.New(),
		GigTitle:       "Backend contractor",
		PreviousStatus: enums.ApplicationStatusApplied,
		Status:         enums.ApplicationStatusShortlisted,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Descriptor.Topic != "gig-notification-events" {
		t.Fatalf("unexpected topic %s", resolved.Descriptor.Topic)
	}
	event, ok := resolved.Payload.(*payloads.ApplicationStatusChangedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if event.UserID != userID || event.Status != enums.ApplicationStatusShortlisted {
		t.Fatalf("payload fields lost: %+v", event)
	}
}

func TestResolveRejectsUnknownAndMismatched(t *testing.T) {
	reg := testRegistry(t)

	row := buildRow(t, "unknown_event", enums.AggregateApplication, map[string]string{"x": "y"})
	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected error for unknown event type")
	} else {
		var nonRetryable NonRetryableError
		if !errors.As(err, &nonRetryable) {
			t.Fatalf("expected non-retryable error, got %v", err)
		}
	}

	row = buildRow(t, enums.EventGigCreated, enums.AggregateApplication, payloads.GigCreatedEvent{GigID: uuid.New()})
	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected aggregate mismatch error")
	}

	row = buildRow(t, enums.EventGigCreated, enums.AggregateGig, payloads.GigCreatedEvent{GigID: uuid.New()})
	row.AggregateID = uuid.Nil
	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected missing aggregate id error")
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg := testRegistry(t)
	row := buildRow(t, enums.EventGigDeleted, enums.AggregateGig, nil)
	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected error for null payload data")
	}
}
