package applications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type pairKey struct {
	userID uuid.UUID
	gigID  uuid.UUID
}

type stubAppRepo struct {
	entries map[pairKey]*models.UserGigEntry
	apps    map[pairKey]*models.GigApplication
}

func newStubAppRepo() *stubAppRepo {
	return &stubAppRepo{
		entries: map[pairKey]*models.UserGigEntry{},
		apps:    map[pairKey]*models.GigApplication{},
	}
}

func (s *stubAppRepo) FindEntryTx(tx *gorm.DB, userID, gigID uuid.UUID) (*models.UserGigEntry, error) {
	if e, ok := s.entries[pairKey{userID, gigID}]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAppRepo) FindApplicationTx(tx *gorm.DB, gigID, userID uuid.UUID) (*models.GigApplication, error) {
	if a, ok := s.apps[pairKey{userID, gigID}]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAppRepo) CreatePairTx(tx *gorm.DB, entry *models.UserGigEntry, app *models.GigApplication) error {
	key := pairKey{entry.UserID, entry.GigID}
	if _, ok := s.entries[key]; ok {
		return errors.New(`duplicate key value violates unique constraint "user_gig_entries_user_gig_key"`)
	}
	entry.ID = uuid.New()
	app.ID = uuid.New()
	entryCopy := *entry
	appCopy := *app
	s.entries[key] = &entryCopy
	s.apps[key] = &appCopy
	return nil
}

func (s *stubAppRepo) SaveEntryTx(tx *gorm.DB, entry *models.UserGigEntry) error {
	copied := *entry
	s.entries[pairKey{entry.UserID, entry.GigID}] = &copied
	return nil
}

func (s *stubAppRepo) SaveApplicationTx(tx *gorm.DB, app *models.GigApplication) error {
	copied := *app
	s.apps[pairKey{app.UserID, app.GigID}] = &copied
	return nil
}

func (s *stubAppRepo) ListEntriesForUser(ctx context.Context, userID uuid.UUID) ([]models.UserGigEntry, error) {
	var out []models.UserGigEntry
	for key, e := range s.entries {
		if key.userID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *stubAppRepo) ListApplicationsByGigIDs(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID][]models.GigApplication, error) {
	result := map[uuid.UUID][]models.GigApplication{}
	for _, id := range gigIDs {
		result[id] = []models.GigApplication{}
	}
	for key, a := range s.apps {
		if _, ok := result[key.gigID]; ok {
			result[key.gigID] = append(result[key.gigID], *a)
		}
	}
	return result, nil
}

type stubUserFinder struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubGigFinder struct {
	gigs map[uuid.UUID]*models.Gig
}

func (s *stubGigFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	if g, ok := s.gigs[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubGigFinder) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Gig, error) {
	result := map[uuid.UUID]*models.Gig{}
	for _, id := range ids {
		if g, ok := s.gigs[id]; ok {
			result[id] = g
		}
	}
	return result, nil
}

type recordingNotifier struct {
	events []outbox.DomainEvent
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event outbox.DomainEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

type fixture struct {
	service  Service
	repo     *stubAppRepo
	users    *stubUserFinder
	gigs     *stubGigFinder
	notifier *recordingNotifier
	userID   uuid.UUID
	gigID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubAppRepo()
	userID := uuid.New()
	gigID := uuid.New()
	users := &stubUserFinder{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "applicant@example.com", Role: enums.UserRoleUser, Approved: true, ProfileFilled: true},
	}}
	gigFinder := &stubGigFinder{gigs: map[uuid.UUID]*models.Gig{
		gigID: {ID: gigID, Title: "Build landing page", Company: "Acme", CreatedAt: time.Now()},
	}}
	notifier := &recordingNotifier{}

	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		Repo:     repo,
		UserRepo: users,
		GigRepo:  gigFinder,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{
		service:  svc,
		repo:     repo,
		users:    users,
		gigs:     gigFinder,
		notifier: notifier,
		userID:   userID,
		gigID:    gigID,
	}
}

func (f *fixture) pair(t *testing.T) (*models.UserGigEntry, *models.GigApplication) {
	t.Helper()
	key := pairKey{f.userID, f.gigID}
	entry, ok := f.repo.entries[key]
	if !ok {
		t.Fatalf("expected user-side entry to exist")
	}
	app, ok := f.repo.apps[key]
	if !ok {
		t.Fatalf("expected gig-side application to exist")
	}
	return entry, app
}

func (f *fixture) assertMirrorsAgree(t *testing.T) {
	t.Helper()
	entry, app := f.pair(t)
	if entry.Status != app.Status {
		t.Fatalf("mirror status mismatch: entry=%s app=%s", entry.Status, app.Status)
	}
	if entry.Boosted != app.Boosted {
		t.Fatalf("mirror boosted mismatch: entry=%v app=%v", entry.Boosted, app.Boosted)
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestApplyCreatesBothMirrors(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Apply(context.Background(), f.userID, f.gigID)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected created=true for a fresh relationship")
	}
	if result.Entry.Status != enums.ApplicationStatusApplied {
		t.Fatalf("expected applied status, got %s", result.Entry.Status)
	}
	entry, app := f.pair(t)
	if entry.AppliedAt == nil || app.TimeApplied == nil {
		t.Fatalf("expected apply timestamps stamped on both mirrors")
	}
	f.assertMirrorsAgree(t)
	if len(f.notifier.events) != 1 || f.notifier.events[0].EventType != enums.EventApplicationCreated {
		t.Fatalf("expected application_created notification, got %+v", f.notifier.events)
	}
}

func TestApplyUpgradesBookmarkInPlace(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Bookmark(context.Background(), f.userID, f.gigID, true); err != nil {
		t.Fatalf("bookmark failed: %v", err)
	}
	result, err := f.service.Apply(context.Background(), f.userID, f.gigID)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result.Created {
		t.Fatalf("expected upgrade path, not creation")
	}
	if len(f.repo.entries) != 1 || len(f.repo.apps) != 1 {
		t.Fatalf("expected exactly one pair, got %d/%d", len(f.repo.entries), len(f.repo.apps))
	}
	entry, _ := f.pair(t)
	if entry.Status != enums.ApplicationStatusApplied {
		t.Fatalf("expected applied after upgrade, got %s", entry.Status)
	}
	if entry.AppliedAt == nil {
		t.Fatalf("expected applied_at stamped on upgrade")
	}
	f.assertMirrorsAgree(t)
}

func TestApplyRejectedWhenNotApproved(t *testing.T) {
	f := newFixture(t)
	f.users.users[f.userID].Approved = false

	_, err := f.service.Apply(context.Background(), f.userID, f.gigID)
	expectCode(t, err, pkgerrors.CodeUserNotApproved)
	if len(f.repo.entries) != 0 {
		t.Fatalf("expected no entry created")
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestApplyRejectedWhenProfileIncomplete(t *testing.T) {
	f := newFixture(t)
	f.users.users[f.userID].ProfileFilled = false

	_, err := f.service.Apply(context.Background(), f.userID, f.gigID)
	expectCode(t, err, pkgerrors.CodeProfileIncomplete)
	if len(f.repo.entries) != 0 {
		t.Fatalf("expected no entry created")
	}
}

func TestDuplicateApplyRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	before, _ := f.pair(t)
	beforeCopy := *before

	_, err := f.service.Apply(context.Background(), f.userID, f.gigID)
	expectCode(t, err, pkgerrors.CodeAlreadyApplied)
	if !strings.Contains(strings.ToLower(pkgerrors.As(err).Message()), "already applied") {
		t.Fatalf("expected message to mention already applied, got %q", pkgerrors.As(err).Message())
	}

	after, _ := f.pair(t)
	if after.Status != beforeCopy.Status || !after.AppliedAt.Equal(*beforeCopy.AppliedAt) {
		t.Fatalf("expected entry unchanged after duplicate apply")
	}
	if len(f.repo.entries) != 1 {
		t.Fatalf("expected single entry, got %d", len(f.repo.entries))
	}
}

func TestApplyUnknownGigReturnsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Apply(context.Background(), f.userID, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetStatusUpdatesBothMirrors(t *testing.T) {
	f := newFixture(t)
	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	f.notifier.events = nil

	dto, err := f.service.SetStatus(context.Background(), admin, f.userID, f.gigID, "shortlisted")
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if dto.Status != enums.ApplicationStatusShortlisted {
		t.Fatalf("expected shortlisted, got %s", dto.Status)
	}
	f.assertMirrorsAgree(t)
	if len(f.notifier.events) != 1 || f.notifier.events[0].EventType != enums.EventApplicationStatusChanged {
		t.Fatalf("expected status_changed notification")
	}
}

func TestSetStatusAcceptsLegacyAliases(t *testing.T) {
	f := newFixture(t)
	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	dto, err := f.service.SetStatus(context.Background(), admin, f.userID, f.gigID, "selected")
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if dto.Status != enums.ApplicationStatusAccepted {
		t.Fatalf("expected alias normalized to accepted, got %s", dto.Status)
	}
	entry, _ := f.pair(t)
	if entry.Status != enums.ApplicationStatusAccepted {
		t.Fatalf("expected stored status accepted, got %s", entry.Status)
	}
}

func TestSetStatusRejectsNonAssignableValues(t *testing.T) {
	f := newFixture(t)
	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	_, err := f.service.SetStatus(context.Background(), admin, f.userID, f.gigID, "bookmarked")
	expectCode(t, err, pkgerrors.CodeValidation)
	_, err = f.service.SetStatus(context.Background(), admin, f.userID, f.gigID, "nonsense")
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestSetStatusWithoutRelationshipReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}

	_, err := f.service.SetStatus(context.Background(), admin, f.userID, f.gigID, "accepted")
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestBookmarkCreatesPairWithoutApplying(t *testing.T) {
	f := newFixture(t)

	dto, err := f.service.Bookmark(context.Background(), f.userID, f.gigID, true)
	if err != nil {
		t.Fatalf("bookmark failed: %v", err)
	}
	if dto.Status != enums.ApplicationStatusBookmarked || !dto.Bookmarked {
		t.Fatalf("unexpected bookmark state: %+v", dto)
	}
	f.assertMirrorsAgree(t)
	if len(f.notifier.events) != 1 || f.notifier.events[0].EventType != enums.EventApplicationStatusChanged {
		t.Fatalf("expected status change notification for new bookmark, got %+v", f.notifier.events)
	}
}

func TestBookmarkFlipDoesNotTouchStatus(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	f.notifier.events = nil
	dto, err := f.service.Bookmark(context.Background(), f.userID, f.gigID, true)
	if err != nil {
		t.Fatalf("bookmark failed: %v", err)
	}
	if dto.Status != enums.ApplicationStatusApplied {
		t.Fatalf("expected status untouched, got %s", dto.Status)
	}
	if !dto.Bookmarked {
		t.Fatalf("expected bookmarked flag set")
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("flag flip should not notify, got %+v", f.notifier.events)
	}
}

func TestRemovingAbsentBookmarkReturnsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Bookmark(context.Background(), f.userID, f.gigID, false)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestBoostSetsFlagOnBothMirrors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	dto, err := f.service.Boost(context.Background(), f.userID, f.gigID, true)
	if err != nil {
		t.Fatalf("boost failed: %v", err)
	}
	if !dto.Boosted {
		t.Fatalf("expected boosted flag set")
	}
	entry, app := f.pair(t)
	if !entry.Boosted || !app.Boosted {
		t.Fatalf("expected boost on both mirrors")
	}
	f.assertMirrorsAgree(t)
}

func TestSubmitWorkForcesCompleted(t *testing.T) {
	f := newFixture(t)
	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := f.service.SetStatus(context.Background(), admin, f.userID, f.gigID, "accepted"); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	f.notifier.events = nil

	dto, err := f.service.SubmitWork(context.Background(), f.userID, f.gigID, SubmissionInput{
		FileURL: "https://storage.example.com/work/final.zip",
		Note:    "done",
	})
	if err != nil {
		t.Fatalf("submit work failed: %v", err)
	}
	if dto.Status != enums.ApplicationStatusCompleted {
		t.Fatalf("expected completed, got %s", dto.Status)
	}
	entry, app := f.pair(t)
	if len(entry.Submissions) != 1 || len(app.Submissions) != 1 {
		t.Fatalf("expected submission on both mirrors")
	}
	if entry.Submissions[0].Status != enums.SubmissionStatusSubmitted {
		t.Fatalf("expected submitted status on submission")
	}
	f.assertMirrorsAgree(t)
	if len(f.notifier.events) != 1 || f.notifier.events[0].EventType != enums.EventWorkSubmitted {
		t.Fatalf("expected work_submitted notification")
	}
}

func TestSubmitWorkRequiresFileURL(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	_, err := f.service.SubmitWork(context.Background(), f.userID, f.gigID, SubmissionInput{Note: "missing file"})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestWithdrawForcesWithdrawalRequested(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	f.notifier.events = nil

	dto, err := f.service.Withdraw(context.Background(), f.userID, f.gigID, "applicant@upi", "Applicant Name")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if dto.Status != enums.ApplicationStatusWithdrawalRequested {
		t.Fatalf("expected withdrawal_requested, got %s", dto.Status)
	}
	entry, app := f.pair(t)
	if len(entry.Withdrawals) != 1 || len(app.Withdrawals) != 1 {
		t.Fatalf("expected withdrawal on both mirrors")
	}
	if entry.Withdrawals[0].Status != enums.WithdrawalStatusPending {
		t.Fatalf("expected pending withdrawal")
	}
	f.assertMirrorsAgree(t)
	if len(f.notifier.events) != 1 || f.notifier.events[0].EventType != enums.EventWithdrawalRequested {
		t.Fatalf("expected withdrawal_requested notification")
	}
}

func TestWithdrawRequiresBothFields(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	_, err := f.service.Withdraw(context.Background(), f.userID, f.gigID, "applicant@upi", "")
	expectCode(t, err, pkgerrors.CodeValidation)
	_, err = f.service.Withdraw(context.Background(), f.userID, f.gigID, "", "Applicant Name")
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestNotifierFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("pubsub down")

	result, err := f.service.Apply(context.Background(), f.userID, f.gigID)
	if err != nil {
		t.Fatalf("apply should succeed despite notifier failure: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected created result")
	}
	f.assertMirrorsAgree(t)
}

func TestListForUserKeepsEntriesWithMissingGig(t *testing.T) {
	f := newFixture(t)
	orphanGig := uuid.New()
	f.gigs.gigs[orphanGig] = &models.Gig{ID: orphanGig, Title: "Soon deleted", Company: "Acme"}

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := f.service.Apply(context.Background(), f.userID, orphanGig); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	delete(f.gigs.gigs, orphanGig)

	rows, err := f.service.ListForUser(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both entries listed, got %d", len(rows))
	}
	var withGig, withoutGig int
	for _, row := range rows {
		if row.Gig != nil {
			withGig++
		} else {
			withoutGig++
		}
	}
	if withGig != 1 || withoutGig != 1 {
		t.Fatalf("expected one merged and one orphan row, got %d/%d", withGig, withoutGig)
	}
}

func TestListByGigIDsReturnsEmptySliceForUnknownGig(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Apply(context.Background(), f.userID, f.gigID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	unknown := uuid.New()
	result, err := f.service.ListByGigIDs(context.Background(), []uuid.UUID{f.gigID, unknown})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result[f.gigID]) != 1 {
		t.Fatalf("expected one applicant for known gig")
	}
	if apps, ok := result[unknown]; !ok || len(apps) != 0 {
		t.Fatalf("expected empty slice for unknown gig")
	}
}
