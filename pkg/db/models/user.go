package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// User represents the canonical identity entity. Approved and ProfileFilled
// gate applications; ProfileFilled is derived and recomputed on every profile
// write, never set directly by callers.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	Role          enums.UserRole `gorm:"column:role;type:text;not null;default:user"`
	Approved      bool           `gorm:"column:approved;not null;default:false"`
	ProfileFilled bool           `gorm:"column:profile_filled;not null;default:false"`
	Name          *string        `gorm:"column:name"`
	Description   *string        `gorm:"column:description"`
	Phone         *string        `gorm:"column:phone"`
	Gender        *string        `gorm:"column:gender"`
	DateOfBirth   *time.Time     `gorm:"column:date_of_birth;type:date"`
	GithubURL     *string        `gorm:"column:github_url"`
	LinkedinURL   *string        `gorm:"column:linkedin_url"`
	ResumeURL     *string        `gorm:"column:resume_url"`
	Skills        pq.StringArray `gorm:"column:skills;type:text[];not null;default:ARRAY[]::text[]"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
