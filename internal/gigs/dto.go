package gigs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
)

// GigDTO is the transport shape of a gig listing.
type GigDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Description string          `json:"description"`
	PayAmount   decimal.Decimal `json:"pay_amount"`
	Skills      []string        `json:"skills"`
	Openings    int             `json:"openings"`
	PostedBy    uuid.UUID       `json:"posted_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateGigDTO holds the data required to persist a new gig.
type CreateGigDTO struct {
	Title       string
	Company     string
	Description string
	PayAmount   decimal.Decimal
	Skills      []string
	Openings    int
	PostedBy    uuid.UUID
}

// GigPageDTO is one cursor page of gigs.
type GigPageDTO struct {
	Gigs       []GigDTO `json:"gigs"`
	Total      int      `json:"total"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

func FromModel(g *models.Gig) GigDTO {
	return GigDTO{
		ID:          g.ID,
		Title:       g.Title,
		Company:     g.Company,
		Description: g.Description,
		PayAmount:   g.PayAmount,
		Skills:      append([]string(nil), []string(g.Skills)...),
		Openings:    g.Openings,
		PostedBy:    g.PostedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func (c CreateGigDTO) ToModel() *models.Gig {
	openings := c.Openings
	if openings <= 0 {
		openings = 1
	}
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	} else {
		skills = append([]string(nil), skills...)
	}

	return &models.Gig{
		Title:       c.Title,
		Company:     c.Company,
		Description: c.Description,
		PayAmount:   c.PayAmount,
		Skills:      skills,
		Openings:    openings,
		PostedBy:    c.PostedBy,
	}
}
