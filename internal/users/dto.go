package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID            uuid.UUID      `json:"id"`
	Email         string         `json:"email"`
	Role          enums.UserRole `json:"role"`
	Approved      bool           `json:"approved"`
	ProfileFilled bool           `json:"profile_filled"`
	Name          *string        `json:"name,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Gender        *string        `json:"gender,omitempty"`
	DateOfBirth   *time.Time     `json:"date_of_birth,omitempty"`
	GithubURL     *string        `json:"github_url,omitempty"`
	LinkedinURL   *string        `json:"linkedin_url,omitempty"`
	ResumeURL     *string        `json:"resume_url,omitempty"`
	Skills        []string       `json:"skills"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Role         *enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		Approved:      u.Approved,
		ProfileFilled: u.ProfileFilled,
		Name:          u.Name,
		Description:   u.Description,
		Phone:         u.Phone,
		Gender:        u.Gender,
		DateOfBirth:   u.DateOfBirth,
		GithubURL:     u.GithubURL,
		LinkedinURL:   u.LinkedinURL,
		ResumeURL:     u.ResumeURL,
		Skills:        append([]string(nil), []string(u.Skills)...),
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := enums.UserRoleUser
	if c.Role != nil {
		role = *c.Role
	}

	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		Skills:       []string{},
	}
}
