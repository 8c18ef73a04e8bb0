package applications

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/internal/gigs"
	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// EntryDTO is the user-side view of one application relationship.
type EntryDTO struct {
	GigID       uuid.UUID                  `json:"gig_id"`
	Status      enums.ApplicationStatus    `json:"status"`
	Bookmarked  bool                       `json:"bookmarked"`
	Boosted     bool                       `json:"boosted"`
	AppliedAt   *time.Time                 `json:"applied_at,omitempty"`
	Submissions []models.Submission        `json:"submissions"`
	Withdrawals []models.WithdrawalRequest `json:"withdrawals"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// UserApplicationDTO is one row of the merged user view: the relationship
// plus the gig it points at. Gig is nil when the gig row is gone; the entry
// is still listed.
type UserApplicationDTO struct {
	Entry EntryDTO     `json:"entry"`
	Gig   *gigs.GigDTO `json:"gig,omitempty"`
}

// GigApplicationDTO is the gig-side view of one applicant.
type GigApplicationDTO struct {
	UserID      uuid.UUID                  `json:"user_id"`
	Status      enums.ApplicationStatus    `json:"status"`
	Boosted     bool                       `json:"boosted"`
	TimeApplied *time.Time                 `json:"time_applied,omitempty"`
	LastUpdated time.Time                  `json:"last_updated"`
	Submissions []models.Submission        `json:"submissions"`
	Withdrawals []models.WithdrawalRequest `json:"withdrawals"`
}

// ApplyResult reports whether Apply created a fresh relationship (HTTP 201)
// or upgraded an existing bookmark (HTTP 200).
type ApplyResult struct {
	Created bool     `json:"created"`
	Entry   EntryDTO `json:"entry"`
}

// SubmissionInput is the payload for submitting work against a gig.
type SubmissionInput struct {
	FileURL string `json:"file_url"`
	Note    string `json:"note"`
}

func entryFromModel(e *models.UserGigEntry) EntryDTO {
	return EntryDTO{
		GigID:       e.GigID,
		Status:      e.Status,
		Bookmarked:  e.Bookmarked,
		Boosted:     e.Boosted,
		AppliedAt:   e.AppliedAt,
		Submissions: append([]models.Submission{}, e.Submissions...),
		Withdrawals: append([]models.WithdrawalRequest{}, e.Withdrawals...),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func applicationFromModel(a *models.GigApplication) GigApplicationDTO {
	return GigApplicationDTO{
		UserID:      a.UserID,
		Status:      a.Status,
		Boosted:     a.Boosted,
		TimeApplied: a.TimeApplied,
		LastUpdated: a.LastUpdated,
		Submissions: append([]models.Submission{}, a.Submissions...),
		Withdrawals: append([]models.WithdrawalRequest{}, a.Withdrawals...),
	}
}
