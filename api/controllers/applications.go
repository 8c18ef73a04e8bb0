package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gigboardhq/gigboard-backend/api/responses"
	"github.com/gigboardhq/gigboard-backend/api/validators"
	"github.com/gigboardhq/gigboard-backend/internal/applications"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
)

const maxGigIDsPerQuery = 50

// ApplicationActionRequest is the multiplexed PATCH payload. Fields beyond
// action are read depending on the chosen action.
type ApplicationActionRequest struct {
	Action  string  `json:"action" validate:"required,oneof=bookmark boost submit_work withdraw"`
	Value   *bool   `json:"value"`
	FileURL string  `json:"file_url"`
	Note    *string `json:"note"`
	UpiID   string  `json:"upi_id"`
	UpiName string  `json:"upi_name"`
}

// SetStatusRequest is the admin payload for a direct status transition.
type SetStatusRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Status string    `json:"status" validate:"required"`
}

// ApplicationApply submits (or upgrades a bookmark into) an application.
// A fresh pair responds 201; a bookmark upgrade responds 200.
func ApplicationApply(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gigID, err := pathUUID(r, "gigId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Apply(r.Context(), actor.UserID, gigID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// ApplicationAction multiplexes the user-driven mutations on an existing
// relationship: bookmark, boost, submit_work, withdraw.
func ApplicationAction(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gigID, err := pathUUID(r, "gigId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ApplicationActionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value := true
		if body.Value != nil {
			value = *body.Value
		}

		var entry applications.EntryDTO
		switch body.Action {
		case "bookmark":
			entry, err = svc.Bookmark(r.Context(), actor.UserID, gigID, value)
		case "boost":
			entry, err = svc.Boost(r.Context(), actor.UserID, gigID, value)
		case "submit_work":
			note := ""
			if body.Note != nil {
				note = *body.Note
			}
			entry, err = svc.SubmitWork(r.Context(), actor.UserID, gigID, applications.SubmissionInput{
				FileURL: body.FileURL,
				Note:    note,
			})
		case "withdraw":
			entry, err = svc.Withdraw(r.Context(), actor.UserID, gigID, body.UpiID, body.UpiName)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "unknown action")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// ApplicationSetStatus performs an admin status transition on both mirrors.
func ApplicationSetStatus(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gigID, err := pathUUID(r, "gigId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body SetStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.SetStatus(r.Context(), actor, body.UserID, gigID, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// MyApplications returns the authenticated user's entries merged with gig
// details. Entries whose gig has been removed are kept with a null gig.
func MyApplications(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListForUser(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applications": items})
	}
}

// ApplicationsByGig returns applicant arrays keyed by gig id for the
// requested gigs. Unknown gigs map to empty arrays.
func ApplicationsByGig(svc applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		gigIDs, err := validators.ParseQueryUUIDList(r, "gig_ids", maxGigIDsPerQuery)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(gigIDs) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gig_ids is required"))
			return
		}

		grouped, err := svc.ListByGigIDs(r.Context(), gigIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applications": grouped})
	}
}
