package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateApplication  OutboxAggregateType = "application"
	AggregateGig          OutboxAggregateType = "gig"
	AggregateUser         OutboxAggregateType = "user"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateApplication,
	AggregateGig,
	AggregateUser,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventApplicationCreated       OutboxEventType = "application_created"
	EventApplicationStatusChanged OutboxEventType = "application_status_changed"
	EventWorkSubmitted            OutboxEventType = "work_submitted"
	EventWithdrawalRequested      OutboxEventType = "withdrawal_requested"
	EventGigCreated               OutboxEventType = "gig_created"
	EventGigDeleted               OutboxEventType = "gig_deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventApplicationCreated,
	EventApplicationStatusChanged,
	EventWorkSubmitted,
	EventWithdrawalRequested,
	EventGigCreated,
	EventGigDeleted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
