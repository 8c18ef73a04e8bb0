package models

import (
	"time"

	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// Submission is one delivered piece of work, stored inside the jsonb
// submissions list on both mirror rows.
type Submission struct {
	FileURL     string                 `json:"file_url"`
	Note        string                 `json:"note,omitempty"`
	Status      enums.SubmissionStatus `json:"status"`
	SubmittedAt time.Time              `json:"submitted_at"`
}

// WithdrawalRequest is one payout request, stored inside the jsonb
// withdrawals list on both mirror rows.
type WithdrawalRequest struct {
	UPIID       string                 `json:"upi_id"`
	UPIName     string                 `json:"upi_name"`
	Status      enums.WithdrawalStatus `json:"status"`
	RequestedAt time.Time              `json:"requested_at"`
}
