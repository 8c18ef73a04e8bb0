package gigs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox/payloads"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubGigRepo struct {
	gigs    map[uuid.UUID]*models.Gig
	deleted []uuid.UUID
}

func newStubGigRepo() *stubGigRepo {
	return &stubGigRepo{gigs: map[uuid.UUID]*models.Gig{}}
}

func (s *stubGigRepo) CreateTx(tx *gorm.DB, dto CreateGigDTO) (*models.Gig, error) {
	gig := dto.ToModel()
	gig.ID = uuid.New()
	s.gigs[gig.ID] = gig
	return gig, nil
}

func (s *stubGigRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	if g, ok := s.gigs[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubGigRepo) List(ctx context.Context, skill string, cursor string, limit int) (GigPageDTO, error) {
	page := GigPageDTO{Gigs: []GigDTO{}}
	for _, g := range s.gigs {
		page.Gigs = append(page.Gigs, FromModel(g))
	}
	page.Total = len(page.Gigs)
	return page, nil
}

func (s *stubGigRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if _, ok := s.gigs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.gigs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubApplicants struct {
	userIDs []uuid.UUID
}

func (s *stubApplicants) ListUserIDsByGig(ctx context.Context, gigID uuid.UUID) ([]uuid.UUID, error) {
	return s.userIDs, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func newGigService(t *testing.T, repo *stubGigRepo, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		TxRunner:   stubTxRunner{},
		GigRepo:    repo,
		Outbox:     emitter,
		Applicants: &stubApplicants{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func adminActor() outbox.ActorRef {
	return outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}
}

func TestCreateEmitsGigCreated(t *testing.T) {
	repo := newStubGigRepo()
	emitter := &stubEmitter{}
	svc := newGigService(t, repo, emitter)

	dto, err := svc.Create(context.Background(), adminActor(), CreateGigDTO{
		Title:       "Build landing page",
		Company:     "Acme",
		Description: "One-pager with a signup form",
		PayAmount:   decimal.NewFromInt(5000),
		Skills:      []string{"html", "css"},
		Openings:    2,
		PostedBy:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if dto.ID == uuid.Nil {
		t.Fatalf("expected assigned gig id")
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(emitter.events))
	}
	if emitter.events[0].EventType != enums.EventGigCreated {
		t.Fatalf("unexpected event type %s", emitter.events[0].EventType)
	}
	if emitter.events[0].AggregateID != dto.ID {
		t.Fatalf("event aggregate mismatch")
	}
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	svc := newGigService(t, newStubGigRepo(), &stubEmitter{})

	_, err := svc.Create(context.Background(), adminActor(), CreateGigDTO{
		Company:  "Acme",
		PostedBy: uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateRejectsNegativePay(t *testing.T) {
	svc := newGigService(t, newStubGigRepo(), &stubEmitter{})

	_, err := svc.Create(context.Background(), adminActor(), CreateGigDTO{
		Title:     "Fix bug",
		Company:   "Acme",
		PayAmount: decimal.NewFromInt(-1),
		PostedBy:  uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestDeleteEmitsGigDeleted(t *testing.T) {
	repo := newStubGigRepo()
	emitter := &stubEmitter{}
	svc := newGigService(t, repo, emitter)

	created, err := svc.Create(context.Background(), adminActor(), CreateGigDTO{
		Title:    "Data entry",
		Company:  "Acme",
		PostedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	emitter.events = nil

	if err := svc.Delete(context.Background(), adminActor(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != created.ID {
		t.Fatalf("expected gig deleted")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventGigDeleted {
		t.Fatalf("expected gig_deleted event, got %+v", emitter.events)
	}
}

func TestDeleteCapturesApplicantsInPayload(t *testing.T) {
	repo := newStubGigRepo()
	emitter := &stubEmitter{}
	applicants := &stubApplicants{userIDs: []uuid.UUID{uuid.New(), uuid.New()}}
	svc, err := NewService(ServiceParams{
		TxRunner:   stubTxRunner{},
		GigRepo:    repo,
		Outbox:     emitter,
		Applicants: applicants,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Create(context.Background(), adminActor(), CreateGigDTO{
		Title:    "Translate docs",
		Company:  "Acme",
		PostedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	emitter.events = nil

	if err := svc.Delete(context.Background(), adminActor(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	payload, ok := emitter.events[0].Data.(payloads.GigDeletedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", emitter.events[0].Data)
	}
	if len(payload.ApplicantIDs) != 2 {
		t.Fatalf("expected applicants captured, got %d", len(payload.ApplicantIDs))
	}
}

func TestDeleteUnknownGigReturnsNotFound(t *testing.T) {
	svc := newGigService(t, newStubGigRepo(), &stubEmitter{})

	err := svc.Delete(context.Background(), adminActor(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListRejectsGarbageCursor(t *testing.T) {
	svc := newGigService(t, newStubGigRepo(), &stubEmitter{})

	_, err := svc.List(context.Background(), "", "not-a-cursor", 10)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
