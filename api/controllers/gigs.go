package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gigboardhq/gigboard-backend/api/responses"
	"github.com/gigboardhq/gigboard-backend/api/validators"
	"github.com/gigboardhq/gigboard-backend/internal/gigs"
	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
)

const (
	defaultGigPageLimit = 20
	maxGigPageLimit     = 100
)

// CreateGigRequest is the admin payload for publishing a gig.
type CreateGigRequest struct {
	Title       string          `json:"title" validate:"required"`
	Company     string          `json:"company" validate:"required"`
	Description string          `json:"description"`
	PayAmount   decimal.Decimal `json:"pay_amount"`
	Skills      []string        `json:"skills"`
	Openings    int             `json:"openings"`
}

// GigCreate publishes a new gig on behalf of the admin actor.
func GigCreate(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body CreateGigRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gig, err := svc.Create(r.Context(), actor, gigs.CreateGigDTO{
			Title:       body.Title,
			Company:     body.Company,
			Description: body.Description,
			PayAmount:   body.PayAmount,
			Skills:      body.Skills,
			Openings:    body.Openings,
			PostedBy:    actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, gig)
	}
}

// GigList returns a cursor page of gigs, optionally filtered by skill.
func GigList(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultGigPageLimit, 1, maxGigPageLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skill := strings.TrimSpace(r.URL.Query().Get("skill"))
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.List(r.Context(), skill, cursor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GigGet returns a single gig by id.
func GigGet(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		gigID, err := pathUUID(r, "gigId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gig, err := svc.Get(r.Context(), gigID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, gig)
	}
}

// GigDelete removes a gig; application mirrors cascade away with it.
func GigDelete(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
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

		if err := svc.Delete(r.Context(), actor, gigID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
