package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// GigApplication is the gig-side mirror of an application relationship,
// written only together with the matching UserGigEntry row.
type GigApplication struct {
	ID          uuid.UUID                              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GigID       uuid.UUID                              `gorm:"column:gig_id;type:uuid;not null;index:gig_applications_gig_id_idx;uniqueIndex:gig_applications_gig_user_key"`
	UserID      uuid.UUID                              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:gig_applications_gig_user_key"`
	Status      enums.ApplicationStatus                `gorm:"column:status;type:text;not null"`
	Boosted     bool                                   `gorm:"column:boosted;not null;default:false"`
	TimeApplied *time.Time                             `gorm:"column:time_applied"`
	LastUpdated time.Time                              `gorm:"column:last_updated;autoUpdateTime"`
	Submissions datatypes.JSONSlice[Submission]        `gorm:"column:submissions;type:jsonb;not null;default:'[]'"`
	Withdrawals datatypes.JSONSlice[WithdrawalRequest] `gorm:"column:withdrawals;type:jsonb;not null;default:'[]'"`
	CreatedAt   time.Time                              `gorm:"column:created_at;autoCreateTime"`
}
