package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Gig represents a posted listing users can bookmark and apply to.
type Gig struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Company     string          `gorm:"column:company;not null"`
	Description string          `gorm:"column:description;not null"`
	PayAmount   decimal.Decimal `gorm:"column:pay_amount;type:numeric(12,2);not null"`
	Skills      pq.StringArray  `gorm:"column:skills;type:text[];not null;default:ARRAY[]::text[]"`
	Openings    int             `gorm:"column:openings;not null;default:1"`
	PostedBy    uuid.UUID       `gorm:"column:posted_by;type:uuid;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
