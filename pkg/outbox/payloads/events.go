package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// ApplicationCreatedEvent signals a user applied to a gig for the first time.
type ApplicationCreatedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	GigID     uuid.UUID `json:"gig_id"`
	GigTitle  string    `json:"gig_title"`
	AppliedAt time.Time `json:"applied_at"`
}

// ApplicationStatusChangedEvent is emitted on every admin transition.
type ApplicationStatusChangedEvent struct {
	UserID         uuid.UUID               `json:"user_id"`
	GigID          uuid.UUID               `json:"gig_id"`
	GigTitle       string                  `json:"gig_title"`
	PreviousStatus enums.ApplicationStatus `json:"previous_status"`
	Status         enums.ApplicationStatus `json:"status"`
}

// WorkSubmittedEvent reports a delivered submission forcing completion.
type WorkSubmittedEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	GigID       uuid.UUID `json:"gig_id"`
	GigTitle    string    `json:"gig_title"`
	FileURL     string    `json:"file_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// WithdrawalRequestedEvent reports a payout request awaiting processing.
type WithdrawalRequestedEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	GigID       uuid.UUID `json:"gig_id"`
	GigTitle    string    `json:"gig_title"`
	UPIID       string    `json:"upi_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// GigCreatedEvent announces a newly posted gig.
type GigCreatedEvent struct {
	GigID    uuid.UUID `json:"gig_id"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	PostedBy uuid.UUID `json:"posted_by"`
}

// GigDeletedEvent announces a removed gig. The applicant list is captured in
// the payload because the mirror rows cascade away with the gig row, so the
// consumer cannot resolve recipients after the fact.
type GigDeletedEvent struct {
	GigID        uuid.UUID   `json:"gig_id"`
	Title        string      `json:"title"`
	ApplicantIDs []uuid.UUID `json:"applicant_ids"`
}
