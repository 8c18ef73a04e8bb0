package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/internal/gigs"
	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox/payloads"
)

// TxRunner executes a closure inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter records a domain event inside the caller's transaction.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ApplicationRepo is the mirror-table persistence surface.
type ApplicationRepo interface {
	FindEntryTx(tx *gorm.DB, userID, gigID uuid.UUID) (*models.UserGigEntry, error)
	FindApplicationTx(tx *gorm.DB, gigID, userID uuid.UUID) (*models.GigApplication, error)
	CreatePairTx(tx *gorm.DB, entry *models.UserGigEntry, app *models.GigApplication) error
	SaveEntryTx(tx *gorm.DB, entry *models.UserGigEntry) error
	SaveApplicationTx(tx *gorm.DB, app *models.GigApplication) error
	ListEntriesForUser(ctx context.Context, userID uuid.UUID) ([]models.UserGigEntry, error)
	ListApplicationsByGigIDs(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID][]models.GigApplication, error)
}

// UserFinder resolves users for the eligibility gate.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// GigFinder resolves gigs for existence checks and the merged view.
type GigFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Gig, error)
}

// ServiceParams groups dependencies for the applications service.
type ServiceParams struct {
	TxRunner TxRunner
	Repo     ApplicationRepo
	UserRepo UserFinder
	GigRepo  GigFinder
	Notifier Notifier
	Logger   *logger.Logger
}

// Service runs the application lifecycle. Every mutation updates both mirror
// rows inside one transaction; nothing else in the codebase writes them.
type Service interface {
	Apply(ctx context.Context, userID, gigID uuid.UUID) (ApplyResult, error)
	SetStatus(ctx context.Context, actor outbox.ActorRef, userID, gigID uuid.UUID, status string) (EntryDTO, error)
	Bookmark(ctx context.Context, userID, gigID uuid.UUID, value bool) (EntryDTO, error)
	Boost(ctx context.Context, userID, gigID uuid.UUID, value bool) (EntryDTO, error)
	SubmitWork(ctx context.Context, userID, gigID uuid.UUID, submission SubmissionInput) (EntryDTO, error)
	Withdraw(ctx context.Context, userID, gigID uuid.UUID, upiID, upiName string) (EntryDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]UserApplicationDTO, error)
	ListByGigIDs(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID][]GigApplicationDTO, error)
}

type service struct {
	txRunner TxRunner
	repo     ApplicationRepo
	userRepo UserFinder
	gigRepo  GigFinder
	notifier Notifier
	logg     *logger.Logger
}

// NewService builds an applications service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.GigRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig repo is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	return &service{
		txRunner: params.TxRunner,
		repo:     params.Repo,
		userRepo: params.UserRepo,
		gigRepo:  params.GigRepo,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Apply creates the relationship with status=applied, or upgrades an
// existing bookmark in place. Any other existing status is rejected without
// touching either row.
func (s *service) Apply(ctx context.Context, userID, gigID uuid.UUID) (ApplyResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return ApplyResult{}, err
	}
	if !user.Approved {
		return ApplyResult{}, pkgerrors.New(pkgerrors.CodeUserNotApproved, "User is not approved to apply for gigs")
	}
	if !user.ProfileFilled {
		return ApplyResult{}, pkgerrors.New(pkgerrors.CodeProfileIncomplete, "Profile must be completed before applying")
	}

	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return ApplyResult{}, err
	}

	now := time.Now().UTC()
	var result ApplyResult
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		entry, err := s.repo.FindEntryTx(tx, userID, gigID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = &models.UserGigEntry{
				UserID:      userID,
				GigID:       gigID,
				Status:      enums.ApplicationStatusApplied,
				AppliedAt:   &now,
				Submissions: []models.Submission{},
				Withdrawals: []models.WithdrawalRequest{},
			}
			app := &models.GigApplication{
				GigID:       gigID,
				UserID:      userID,
				Status:      enums.ApplicationStatusApplied,
				TimeApplied: &now,
				Submissions: []models.Submission{},
				Withdrawals: []models.WithdrawalRequest{},
			}
			if err := s.repo.CreatePairTx(tx, entry, app); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create application pair")
			}
			result = ApplyResult{Created: true, Entry: entryFromModel(entry)}
			return nil
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application entry")
		}

		if entry.Status != enums.ApplicationStatusBookmarked {
			return pkgerrors.New(pkgerrors.CodeAlreadyApplied, "You have already applied to this gig")
		}

		app, err := s.loadApplicationTx(tx, gigID, userID)
		if err != nil {
			return err
		}
		entry.Status = enums.ApplicationStatusApplied
		entry.AppliedAt = &now
		app.Status = enums.ApplicationStatusApplied
		app.TimeApplied = &now
		if err := s.savePair(tx, entry, app); err != nil {
			return err
		}
		result = ApplyResult{Created: false, Entry: entryFromModel(entry)}
		return nil
	})
	if err != nil {
		return ApplyResult{}, err
	}

	s.notify(ctx, outbox.DomainEvent{
		EventType:     enums.EventApplicationCreated,
		AggregateType: enums.AggregateApplication,
		AggregateID:   result.Entry.GigID,
		Actor:         &outbox.ActorRef{UserID: userID, Role: string(user.Role)},
		Data: payloads.ApplicationCreatedEvent{
			UserID:    userID,
			GigID:     gigID,
			GigTitle:  gig.Title,
			AppliedAt: now,
		},
	})
	return result, nil
}

// SetStatus performs an admin transition on both mirrors.
func (s *service) SetStatus(ctx context.Context, actor outbox.ActorRef, userID, gigID uuid.UUID, status string) (EntryDTO, error) {
	parsed, err := enums.ParseApplicationStatus(strings.TrimSpace(status))
	if err != nil {
		return EntryDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	assignable := false
	for _, candidate := range enums.AdminAssignableStatuses {
		if candidate == parsed {
			assignable = true
			break
		}
	}
	if !assignable {
		return EntryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "status cannot be assigned directly")
	}

	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return EntryDTO{}, err
	}

	var (
		dto      EntryDTO
		previous enums.ApplicationStatus
	)
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		entry, app, err := s.loadPairTx(tx, userID, gigID)
		if err != nil {
			return err
		}
		previous = entry.Status
		entry.Status = parsed
		app.Status = parsed
		if err := s.savePair(tx, entry, app); err != nil {
			return err
		}
		dto = entryFromModel(entry)
		return nil
	})
	if err != nil {
		return EntryDTO{}, err
	}

	s.notify(ctx, outbox.DomainEvent{
		EventType:     enums.EventApplicationStatusChanged,
		AggregateType: enums.AggregateApplication,
		AggregateID:   gigID,
		Actor:         &actor,
		Data: payloads.ApplicationStatusChangedEvent{
			UserID:         userID,
			GigID:          gigID,
			GigTitle:       gig.Title,
			PreviousStatus: previous,
			Status:         parsed,
		},
	})
	return dto, nil
}

// Bookmark creates the relationship when none exists, or flips the
// user-side flag on an existing one without touching its status.
func (s *service) Bookmark(ctx context.Context, userID, gigID uuid.UUID, value bool) (EntryDTO, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return EntryDTO{}, err
	}

	var (
		dto     EntryDTO
		created bool
	)
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		entry, err := s.repo.FindEntryTx(tx, userID, gigID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !value {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no bookmark to remove")
			}
			entry = &models.UserGigEntry{
				UserID:      userID,
				GigID:       gigID,
				Status:      enums.ApplicationStatusBookmarked,
				Bookmarked:  true,
				Submissions: []models.Submission{},
				Withdrawals: []models.WithdrawalRequest{},
			}
			app := &models.GigApplication{
				GigID:       gigID,
				UserID:      userID,
				Status:      enums.ApplicationStatusBookmarked,
				Submissions: []models.Submission{},
				Withdrawals: []models.WithdrawalRequest{},
			}
			if err := s.repo.CreatePairTx(tx, entry, app); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bookmark pair")
			}
			created = true
			dto = entryFromModel(entry)
			return nil
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application entry")
		}

		entry.Bookmarked = value
		if err := s.repo.SaveEntryTx(tx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save entry")
		}
		dto = entryFromModel(entry)
		return nil
	})
	if err != nil {
		return EntryDTO{}, err
	}

	// Flag flips on an existing pair leave the status untouched, so only a
	// freshly created pair produces a transition worth announcing.
	if created {
		s.notify(ctx, outbox.DomainEvent{
			EventType:     enums.EventApplicationStatusChanged,
			AggregateType: enums.AggregateApplication,
			AggregateID:   gigID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.ApplicationStatusChangedEvent{
				UserID:   userID,
				GigID:    gigID,
				GigTitle: gig.Title,
				Status:   enums.ApplicationStatusBookmarked,
			},
		})
	}
	return dto, nil
}

// Boost sets the visibility flag on both mirrors.
func (s *service) Boost(ctx context.Context, userID, gigID uuid.UUID, value bool) (EntryDTO, error) {
	var dto EntryDTO
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		entry, app, err := s.loadPairTx(tx, userID, gigID)
		if err != nil {
			return err
		}
		entry.Boosted = value
		app.Boosted = value
		if err := s.savePair(tx, entry, app); err != nil {
			return err
		}
		dto = entryFromModel(entry)
		return nil
	})
	if err != nil {
		return EntryDTO{}, err
	}
	return dto, nil
}

// SubmitWork appends the stamped submission to both mirrors and forces the
// relationship to completed.
func (s *service) SubmitWork(ctx context.Context, userID, gigID uuid.UUID, submission SubmissionInput) (EntryDTO, error) {
	if strings.TrimSpace(submission.FileURL) == "" {
		return EntryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "submission file URL is required")
	}

	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return EntryDTO{}, err
	}

	now := time.Now().UTC()
	stamped := models.Submission{
		FileURL:     strings.TrimSpace(submission.FileURL),
		Note:        strings.TrimSpace(submission.Note),
		Status:      enums.SubmissionStatusSubmitted,
		SubmittedAt: now,
	}

	var dto EntryDTO
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		entry, app, err := s.loadPairTx(tx, userID, gigID)
		if err != nil {
			return err
		}
		entry.Submissions = append(entry.Submissions, stamped)
		entry.Status = enums.ApplicationStatusCompleted
		app.Submissions = append(app.Submissions, stamped)
		app.Status = enums.ApplicationStatusCompleted
		if err := s.savePair(tx, entry, app); err != nil {
			return err
		}
		dto = entryFromModel(entry)
		return nil
	})
	if err != nil {
		return EntryDTO{}, err
	}

	s.notify(ctx, outbox.DomainEvent{
		EventType:     enums.EventWorkSubmitted,
		AggregateType: enums.AggregateApplication,
		AggregateID:   gigID,
		Actor:         &outbox.ActorRef{UserID: userID},
		Data: payloads.WorkSubmittedEvent{
			UserID:      userID,
			GigID:       gigID,
			GigTitle:    gig.Title,
			FileURL:     stamped.FileURL,
			SubmittedAt: now,
		},
	})
	return dto, nil
}

// Withdraw appends a pending payout request to both mirrors and forces the
// relationship to withdrawal_requested.
func (s *service) Withdraw(ctx context.Context, userID, gigID uuid.UUID, upiID, upiName string) (EntryDTO, error) {
	upiID = strings.TrimSpace(upiID)
	upiName = strings.TrimSpace(upiName)
	if upiID == "" || upiName == "" {
		return EntryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "upi id and upi name are required")
	}

	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return EntryDTO{}, err
	}

	now := time.Now().UTC()
	request := models.WithdrawalRequest{
		UPIID:       upiID,
		UPIName:     upiName,
		Status:      enums.WithdrawalStatusPending,
		RequestedAt: now,
	}

	var dto EntryDTO
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		entry, app, err := s.loadPairTx(tx, userID, gigID)
		if err != nil {
			return err
		}
		entry.Withdrawals = append(entry.Withdrawals, request)
		entry.Status = enums.ApplicationStatusWithdrawalRequested
		app.Withdrawals = append(app.Withdrawals, request)
		app.Status = enums.ApplicationStatusWithdrawalRequested
		if err := s.savePair(tx, entry, app); err != nil {
			return err
		}
		dto = entryFromModel(entry)
		return nil
	})
	if err != nil {
		return EntryDTO{}, err
	}

	s.notify(ctx, outbox.DomainEvent{
		EventType:     enums.EventWithdrawalRequested,
		AggregateType: enums.AggregateApplication,
		AggregateID:   gigID,
		Actor:         &outbox.ActorRef{UserID: userID},
		Data: payloads.WithdrawalRequestedEvent{
			UserID:      userID,
			GigID:       gigID,
			GigTitle:    gig.Title,
			UPIID:       upiID,
			RequestedAt: now,
		},
	})
	return dto, nil
}

// ListForUser returns the merged view: every relationship joined with its
// gig. Entries whose gig row has disappeared are kept with a nil gig.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]UserApplicationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	entries, err := s.repo.ListEntriesForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}

	gigIDs := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		gigIDs = append(gigIDs, entries[i].GigID)
	}
	gigsByID, err := s.gigRepo.FindByIDs(ctx, gigIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gigs")
	}

	result := make([]UserApplicationDTO, 0, len(entries))
	for i := range entries {
		row := UserApplicationDTO{Entry: entryFromModel(&entries[i])}
		if gig, ok := gigsByID[entries[i].GigID]; ok {
			dto := gigs.FromModel(gig)
			row.Gig = &dto
		}
		result = append(result, row)
	}
	return result, nil
}

// ListByGigIDs returns the applicant arrays for each requested gig.
func (s *service) ListByGigIDs(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID][]GigApplicationDTO, error) {
	if len(gigIDs) == 0 {
		return map[uuid.UUID][]GigApplicationDTO{}, nil
	}
	rowsByGig, err := s.repo.ListApplicationsByGigIDs(ctx, gigIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications by gig")
	}

	result := make(map[uuid.UUID][]GigApplicationDTO, len(rowsByGig))
	for gigID, rows := range rowsByGig {
		dtos := make([]GigApplicationDTO, 0, len(rows))
		for i := range rows {
			dtos = append(dtos, applicationFromModel(&rows[i]))
		}
		result[gigID] = dtos
	}
	return result, nil
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

func (s *service) loadGig(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	if gigID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig id is required")
	}
	gig, err := s.gigRepo.FindByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "gig not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	return gig, nil
}

// loadPairTx fetches both mirror rows, translating an absent relationship to
// NOT_FOUND.
func (s *service) loadPairTx(tx *gorm.DB, userID, gigID uuid.UUID) (*models.UserGigEntry, *models.GigApplication, error) {
	entry, err := s.repo.FindEntryTx(tx, userID, gigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "application not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application entry")
	}
	app, err := s.loadApplicationTx(tx, gigID, userID)
	if err != nil {
		return nil, nil, err
	}
	return entry, app, nil
}

func (s *service) loadApplicationTx(tx *gorm.DB, gigID, userID uuid.UUID) (*models.GigApplication, error) {
	app, err := s.repo.FindApplicationTx(tx, gigID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig application")
	}
	return app, nil
}

func (s *service) savePair(tx *gorm.DB, entry *models.UserGigEntry, app *models.GigApplication) error {
	if err := s.repo.SaveEntryTx(tx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save entry")
	}
	if err := s.repo.SaveApplicationTx(tx, app); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gig application")
	}
	return nil
}

// notify dispatches the post-commit event. Failures are logged and dropped;
// the transition already committed and its outcome does not change.
func (s *service) notify(ctx context.Context, event outbox.DomainEvent) {
	if err := s.notifier.Notify(ctx, event); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		})
		s.logg.Warn(logCtx, "notification dispatch failed")
	}
}

var _ ApplicationRepo = (*Repository)(nil)
