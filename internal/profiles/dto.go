package profiles

import (
	"time"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
)

// ProfileDTO is the transport shape of a user's profile.
type ProfileDTO struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	GithubURL     *string    `json:"github_url,omitempty"`
	LinkedinURL   *string    `json:"linkedin_url,omitempty"`
	ResumeURL     *string    `json:"resume_url,omitempty"`
	Skills        []string   `json:"skills"`
	ProfileFilled bool       `json:"profile_filled"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UpdateProfileDTO is a partial patch: nil fields are left untouched, non-nil
// fields overwrite the stored value. Skills is replaced wholesale when present.
type UpdateProfileDTO struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Phone       *string    `json:"phone"`
	Gender      *string    `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	GithubURL   *string    `json:"github_url"`
	LinkedinURL *string    `json:"linkedin_url"`
	ResumeURL   *string    `json:"resume_url"`
	Skills      []string   `json:"skills"`
}

func fromUser(u *models.User) ProfileDTO {
	return ProfileDTO{
		Name:          u.Name,
		Description:   u.Description,
		Phone:         u.Phone,
		Gender:        u.Gender,
		DateOfBirth:   u.DateOfBirth,
		GithubURL:     u.GithubURL,
		LinkedinURL:   u.LinkedinURL,
		ResumeURL:     u.ResumeURL,
		Skills:        append([]string(nil), []string(u.Skills)...),
		ProfileFilled: u.ProfileFilled,
		UpdatedAt:     u.UpdatedAt,
	}
}
