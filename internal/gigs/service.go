package gigs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox/payloads"
	"github.com/gigboardhq/gigboard-backend/pkg/pagination"
)

// TxRunner executes a closure inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GigRepo is the persistence surface the service depends on.
type GigRepo interface {
	CreateTx(tx *gorm.DB, dto CreateGigDTO) (*models.Gig, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	List(ctx context.Context, skill string, cursor string, limit int) (GigPageDTO, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

// EventEmitter records a domain event inside the caller's transaction.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ApplicantSource resolves the users attached to a gig, captured in the
// deletion event before the mirror rows cascade away.
type ApplicantSource interface {
	ListUserIDsByGig(ctx context.Context, gigID uuid.UUID) ([]uuid.UUID, error)
}

// ServiceParams groups dependencies for the gigs service.
type ServiceParams struct {
	TxRunner   TxRunner
	GigRepo    GigRepo
	Outbox     EventEmitter
	Applicants ApplicantSource
}

// Service exposes gig management.
type Service interface {
	Create(ctx context.Context, actor outbox.ActorRef, dto CreateGigDTO) (GigDTO, error)
	Get(ctx context.Context, id uuid.UUID) (GigDTO, error)
	List(ctx context.Context, skill string, cursor string, limit int) (GigPageDTO, error)
	Delete(ctx context.Context, actor outbox.ActorRef, id uuid.UUID) error
}

type service struct {
	txRunner   TxRunner
	gigRepo    GigRepo
	outbox     EventEmitter
	applicants ApplicantSource
}

// NewService builds a gigs service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.GigRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig repo is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox emitter is required")
	}
	if params.Applicants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "applicant source is required")
	}
	return &service{
		txRunner:   params.TxRunner,
		gigRepo:    params.GigRepo,
		outbox:     params.Outbox,
		applicants: params.Applicants,
	}, nil
}

// Create persists a gig and queues the announcement event in one transaction.
func (s *service) Create(ctx context.Context, actor outbox.ActorRef, dto CreateGigDTO) (GigDTO, error) {
	if strings.TrimSpace(dto.Title) == "" {
		return GigDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "gig title is required")
	}
	if strings.TrimSpace(dto.Company) == "" {
		return GigDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "gig company is required")
	}
	if dto.PayAmount.IsNegative() {
		return GigDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "pay amount cannot be negative")
	}
	if dto.PostedBy == uuid.Nil {
		return GigDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "posted_by is required")
	}

	var created *models.Gig
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		gig, err := s.gigRepo.CreateTx(tx, dto)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gig")
		}
		created = gig
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGigCreated,
			AggregateType: enums.AggregateGig,
			AggregateID:   gig.ID,
			Actor:         &actor,
			Data: payloads.GigCreatedEvent{
				GigID:    gig.ID,
				Title:    gig.Title,
				Company:  gig.Company,
				PostedBy: gig.PostedBy,
			},
		})
	})
	if err != nil {
		return GigDTO{}, err
	}
	return FromModel(created), nil
}

// Get returns one gig by ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (GigDTO, error) {
	if id == uuid.Nil {
		return GigDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "gig id is required")
	}
	gig, err := s.gigRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GigDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "gig not found")
		}
		return GigDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	return FromModel(gig), nil
}

// List returns one cursor page of gigs.
func (s *service) List(ctx context.Context, skill string, cursor string, limit int) (GigPageDTO, error) {
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return GigPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.gigRepo.List(ctx, skill, cursor, limit)
	if err != nil {
		return GigPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gigs")
	}
	return page, nil
}

// Delete removes a gig and queues the removal event in one transaction.
// Mirror rows for the gig cascade away with it.
func (s *service) Delete(ctx context.Context, actor outbox.ActorRef, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "gig id is required")
	}
	gig, err := s.gigRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "gig not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	applicantIDs, err := s.applicants.ListUserIDsByGig(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load applicants")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.gigRepo.DeleteTx(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "gig not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete gig")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGigDeleted,
			AggregateType: enums.AggregateGig,
			AggregateID:   id,
			Actor:         &actor,
			Data: payloads.GigDeletedEvent{
				GigID:        id,
				Title:        gig.Title,
				ApplicantIDs: applicantIDs,
			},
		})
	})
}

var _ GigRepo = (*Repository)(nil)
