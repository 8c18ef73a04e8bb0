package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/internal/users"
	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
)

// UserRepo is the slice of the users repository this service needs.
type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, columns map[string]any, profileFilled bool) error
}

// ObjectCleaner removes a stored object by its public URL. URLs outside the
// upload bucket are ignored by the implementation.
type ObjectCleaner interface {
	RemoveObjectForURL(ctx context.Context, objectURL string) error
}

// ServiceParams groups dependencies for the profiles service. Cleaner and
// Logger are optional; without them replaced resume files are left in place.
type ServiceParams struct {
	UserRepo UserRepo
	Cleaner  ObjectCleaner
	Logger   *logger.Logger
}

// Service exposes profile reads and the merge-then-recompute update.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, patch UpdateProfileDTO) (ProfileDTO, error)
}

type service struct {
	userRepo UserRepo
	cleaner  ObjectCleaner
	logg     *logger.Logger
}

// NewService builds a profiles service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{
		userRepo: params.UserRepo,
		cleaner:  params.Cleaner,
		logg:     params.Logger,
	}, nil
}

// Get returns the stored profile for a user.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}
	return fromUser(user), nil
}

// Update merges the patch over the stored profile, recomputes the
// completeness flag from the merged result, and persists both in one write.
// The stored flag is never trusted: every update rewrites it.
func (s *service) Update(ctx context.Context, userID uuid.UUID, patch UpdateProfileDTO) (ProfileDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}
	previousResume := user.ResumeURL

	columns := map[string]any{}
	apply := func(column string, stored **string, incoming *string) {
		if incoming != nil {
			*stored = incoming
			columns[column] = incoming
		}
	}
	apply("name", &user.Name, patch.Name)
	apply("description", &user.Description, patch.Description)
	apply("phone", &user.Phone, patch.Phone)
	apply("gender", &user.Gender, patch.Gender)
	apply("github_url", &user.GithubURL, patch.GithubURL)
	apply("linkedin_url", &user.LinkedinURL, patch.LinkedinURL)
	apply("resume_url", &user.ResumeURL, patch.ResumeURL)
	if patch.DateOfBirth != nil {
		user.DateOfBirth = patch.DateOfBirth
		columns["date_of_birth"] = patch.DateOfBirth
	}
	if patch.Skills != nil {
		user.Skills = append([]string(nil), patch.Skills...)
		columns["skills"] = user.Skills
	}

	user.ProfileFilled = isComplete(user)
	if err := s.userRepo.UpdateProfile(ctx, userID, columns, user.ProfileFilled); err != nil {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}

	s.cleanupReplacedResume(ctx, previousResume, patch.ResumeURL)

	user.UpdatedAt = time.Now().UTC()
	return fromUser(user), nil
}

// cleanupReplacedResume deletes the old resume object once a new URL has been
// persisted. Best effort: a failed delete leaves an orphan object, never a
// failed update.
func (s *service) cleanupReplacedResume(ctx context.Context, previous *string, incoming *string) {
	if s.cleaner == nil || incoming == nil || previous == nil {
		return
	}
	old := strings.TrimSpace(*previous)
	if old == "" || old == strings.TrimSpace(*incoming) {
		return
	}
	if err := s.cleaner.RemoveObjectForURL(ctx, old); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to delete replaced resume object")
	}
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// isComplete reports whether every profile field carries a usable value.
func isComplete(u *models.User) bool {
	filled := func(v *string) bool {
		return v != nil && strings.TrimSpace(*v) != ""
	}
	return filled(u.Name) &&
		filled(u.Description) &&
		filled(u.Phone) &&
		filled(u.Gender) &&
		u.DateOfBirth != nil &&
		filled(u.GithubURL) &&
		filled(u.LinkedinURL) &&
		filled(u.ResumeURL) &&
		len(u.Skills) > 0
}

var _ UserRepo = (*users.Repository)(nil)
