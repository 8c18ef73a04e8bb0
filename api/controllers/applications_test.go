package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/api/middleware"
	"github.com/gigboardhq/gigboard-backend/internal/applications"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/types"
)

type stubApplicationsService struct {
	applyResult    applications.ApplyResult
	applyErr       error
	actionEntry    applications.EntryDTO
	actionErr      error
	lastAction     string
	lastStatus     string
	lastUserID     uuid.UUID
	lastGigID      uuid.UUID
	lastSubmission applications.SubmissionInput
}

func (s *stubApplicationsService) Apply(ctx context.Context, userID, gigID uuid.UUID) (applications.ApplyResult, error) {
	s.lastUserID = userID
	s.lastGigID = gigID
	return s.applyResult, s.applyErr
}

func (s *stubApplicationsService) SetStatus(ctx context.Context, actor outbox.ActorRef, userID, gigID uuid.UUID, status string) (applications.EntryDTO, error) {
	s.lastStatus = status
	s.lastUserID = userID
	s.lastGigID = gigID
	return s.actionEntry, s.actionErr
}

func (s *stubApplicationsService) Bookmark(ctx context.Context, userID, gigID uuid.UUID, value bool) (applications.EntryDTO, error) {
	s.lastAction = "bookmark"
	return s.actionEntry, s.actionErr
}

func (s *stubApplicationsService) Boost(ctx context.Context, userID, gigID uuid.UUID, value bool) (applications.EntryDTO, error) {
	s.lastAction = "boost"
	return s.actionEntry, s.actionErr
}

func (s *stubApplicationsService) SubmitWork(ctx context.Context, userID, gigID uuid.UUID, submission applications.SubmissionInput) (applications.EntryDTO, error) {
	s.lastAction = "submit_work"
	s.lastSubmission = submission
	return s.actionEntry, s.actionErr
}

func (s *stubApplicationsService) Withdraw(ctx context.Context, userID, gigID uuid.UUID, upiID, upiName string) (applications.EntryDTO, error) {
	s.lastAction = "withdraw"
	return s.actionEntry, s.actionErr
}

func (s *stubApplicationsService) ListForUser(ctx context.Context, userID uuid.UUID) ([]applications.UserApplicationDTO, error) {
	return nil, nil
}

func (s *stubApplicationsService) ListByGigIDs(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID][]applications.GigApplicationDTO, error) {
	out := make(map[uuid.UUID][]applications.GigApplicationDTO, len(gigIDs))
	for _, id := range gigIDs {
		out[id] = []applications.GigApplicationDTO{}
	}
	return out, nil
}

func authedRequest(t *testing.T, method, target, body string, userID uuid.UUID, role string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func newGigRouter(handler http.HandlerFunc, method string) *chi.Mux {
	r := chi.NewRouter()
	r.MethodFunc(method, "/gigs/{gigId}/applications", handler)
	r.MethodFunc(method, "/gigs/{gigId}/applications/status", handler)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}

func TestApplicationApplyCreatedIs201(t *testing.T) {
	svc := &stubApplicationsService{applyResult: applications.ApplyResult{Created: true}}
	router := newGigRouter(ApplicationApply(svc, nil), http.MethodPost)

	gigID := uuid.New()
	userID := uuid.New()
	req := authedRequest(t, http.MethodPost, "/gigs/"+gigID.String()+"/applications", "", userID, "user")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a fresh application, got %d", w.Code)
	}
	if svc.lastUserID != userID || svc.lastGigID != gigID {
		t.Fatalf("service called with wrong ids: user=%s gig=%s", svc.lastUserID, svc.lastGigID)
	}
}

func TestApplicationApplyUpgradeIs200(t *testing.T) {
	svc := &stubApplicationsService{applyResult: applications.ApplyResult{Created: false}}
	router := newGigRouter(ApplicationApply(svc, nil), http.MethodPost)

	req := authedRequest(t, http.MethodPost, "/gigs/"+uuid.NewString()+"/applications", "", uuid.New(), "user")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a bookmark upgrade, got %d", w.Code)
	}
}

func TestApplicationApplyDuplicateIs400(t *testing.T) {
	svc := &stubApplicationsService{
		applyErr: pkgerrors.New(pkgerrors.CodeAlreadyApplied, "You have already applied to this gig"),
	}
	router := newGigRouter(ApplicationApply(svc, nil), http.MethodPost)

	req := authedRequest(t, http.MethodPost, "/gigs/"+uuid.NewString()+"/applications", "", uuid.New(), "user")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate apply, got %d", w.Code)
	}
	apiErr := decodeError(t, w)
	if apiErr.Code != string(pkgerrors.CodeAlreadyApplied) {
		t.Fatalf("unexpected error code %s", apiErr.Code)
	}
	if !strings.Contains(strings.ToLower(apiErr.Message), "already applied") {
		t.Fatalf("message should mention the duplicate apply, got %q", apiErr.Message)
	}
}

func TestApplicationApplyUnapprovedIs403(t *testing.T) {
	svc := &stubApplicationsService{
		applyErr: pkgerrors.New(pkgerrors.CodeUserNotApproved, "User is not approved to apply for gigs"),
	}
	router := newGigRouter(ApplicationApply(svc, nil), http.MethodPost)

	req := authedRequest(t, http.MethodPost, "/gigs/"+uuid.NewString()+"/applications", "", uuid.New(), "user")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unapproved user, got %d", w.Code)
	}
	apiErr := decodeError(t, w)
	if apiErr.Code != string(pkgerrors.CodeUserNotApproved) {
		t.Fatalf("unexpected error code %s", apiErr.Code)
	}
}

func TestApplicationApplyIncompleteProfileIs400(t *testing.T) {
	svc := &stubApplicationsService{
		applyErr: pkgerrors.New(pkgerrors.CodeProfileIncomplete, "Profile must be completed before applying"),
	}
	router := newGigRouter(ApplicationApply(svc, nil), http.MethodPost)

	req := authedRequest(t, http.MethodPost, "/gigs/"+uuid.NewString()+"/applications", "", uuid.New(), "user")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete profile, got %d", w.Code)
	}
}

func TestApplicationActionDispatch(t *testing.T) {
	cases := []struct {
		body   string
		action string
	}{
		{`{"action":"bookmark","value":true}`, "bookmark"},
		{`{"action":"boost"}`, "boost"},
		{`{"action":"submit_work","file_url":"https://storage.googleapis.com/b/k"}`, "submit_work"},
		{`{"action":"withdraw","upi_id":"dev@upi","upi_name":"Dev"}`, "withdraw"},
	}

	for _, tc := range cases {
		svc := &stubApplicationsService{}
		router := newGigRouter(ApplicationAction(svc, nil), http.MethodPatch)

		req := authedRequest(t, http.MethodPatch, "/gigs/"+uuid.NewString()+"/applications", tc.body, uuid.New(), "user")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("action %s: expected 200, got %d (%s)", tc.action, w.Code, w.Body.String())
		}
		if svc.lastAction != tc.action {
			t.Fatalf("expected %s to be dispatched, got %s", tc.action, svc.lastAction)
		}
	}
}

func TestApplicationActionSubmitWorkNote(t *testing.T) {
	cases := []struct {
		name string
		body string
		note string
	}{
		{"with note", `{"action":"submit_work","file_url":"https://storage.googleapis.com/b/k","note":"first draft"}`, "first draft"},
		{"note omitted", `{"action":"submit_work","file_url":"https://storage.googleapis.com/b/k"}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubApplicationsService{}
			router := newGigRouter(ApplicationAction(svc, nil), http.MethodPatch)

			req := authedRequest(t, http.MethodPatch, "/gigs/"+uuid.NewString()+"/applications", tc.body, uuid.New(), "user")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
			}
			if svc.lastSubmission.Note != tc.note {
				t.Fatalf("expected note %q, got %q", tc.note, svc.lastSubmission.Note)
			}
			if svc.lastSubmission.FileURL == "" {
				t.Fatal("expected file url to pass through")
			}
		})
	}
}

func TestApplicationActionRejectsUnknownAction(t *testing.T) {
	svc := &stubApplicationsService{}
	router := newGigRouter(ApplicationAction(svc, nil), http.MethodPatch)

	req := authedRequest(t, http.MethodPatch, "/gigs/"+uuid.NewString()+"/applications", `{"action":"promote"}`, uuid.New(), "user")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", w.Code)
	}
	if svc.lastAction != "" {
		t.Fatalf("no service call expected, got %s", svc.lastAction)
	}
}

func TestApplicationSetStatusPassesThrough(t *testing.T) {
	svc := &stubApplicationsService{}
	router := newGigRouter(ApplicationSetStatus(svc, nil), http.MethodPut)

	gigID := uuid.New()
	targetUser := uuid.New()
	body := `{"user_id":"` + targetUser.String() + `","status":"shortlisted"}`
	req := authedRequest(t, http.MethodPut, "/gigs/"+gigID.String()+"/applications/status", body, uuid.New(), "admin")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if svc.lastStatus != "shortlisted" || svc.lastUserID != targetUser || svc.lastGigID != gigID {
		t.Fatalf("unexpected call status=%s user=%s gig=%s", svc.lastStatus, svc.lastUserID, svc.lastGigID)
	}
}

func TestApplicationsByGigRequiresIDs(t *testing.T) {
	svc := &stubApplicationsService{}
	handler := ApplicationsByGig(svc, nil)

	req := authedRequest(t, http.MethodGet, "/applications", "", uuid.New(), "admin")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without gig_ids, got %d", w.Code)
	}

	req = authedRequest(t, http.MethodGet, "/applications?gig_ids=not-a-uuid", "", uuid.New(), "admin")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed gig_ids, got %d", w.Code)
	}
}
