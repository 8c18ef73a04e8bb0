package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// UserGigEntry is the user-side mirror of an application relationship. It is
// written only by the application-transition service, in the same transaction
// as the matching GigApplication row, so both sides always agree on status and
// boosted after commit.
type UserGigEntry struct {
	ID          uuid.UUID                              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                              `gorm:"column:user_id;type:uuid;not null;index:user_gig_entries_user_id_idx;uniqueIndex:user_gig_entries_user_gig_key"`
	GigID       uuid.UUID                              `gorm:"column:gig_id;type:uuid;not null;uniqueIndex:user_gig_entries_user_gig_key"`
	Status      enums.ApplicationStatus                `gorm:"column:status;type:text;not null"`
	Bookmarked  bool                                   `gorm:"column:bookmarked;not null;default:false"`
	Boosted     bool                                   `gorm:"column:boosted;not null;default:false"`
	AppliedAt   *time.Time                             `gorm:"column:applied_at"`
	Submissions datatypes.JSONSlice[Submission]        `gorm:"column:submissions;type:jsonb;not null;default:'[]'"`
	Withdrawals datatypes.JSONSlice[WithdrawalRequest] `gorm:"column:withdrawals;type:jsonb;not null;default:'[]'"`
	CreatedAt   time.Time                              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                              `gorm:"column:updated_at;autoUpdateTime"`
}
