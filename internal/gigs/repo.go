package gigs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
	"github.com/gigboardhq/gigboard-backend/pkg/pagination"
)

// Repository encapsulates gig persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a gigs repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a gig as part of the caller's transaction.
func (r *Repository) CreateTx(tx *gorm.DB, dto CreateGigDTO) (*models.Gig, error) {
	gig := dto.ToModel()
	if err := tx.Create(gig).Error; err != nil {
		return nil, err
	}
	return gig, nil
}

// FindByID loads a gig by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	if err := r.db.WithContext(ctx).First(&gig, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gig, nil
}

// FindByIDs loads the gigs matching the given IDs, keyed by ID.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Gig, error) {
	result := make(map[uuid.UUID]*models.Gig, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.Gig
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = &rows[i]
	}
	return result, nil
}

// List returns one cursor page of gigs, newest first, optionally filtered by
// a required skill.
func (r *Repository) List(ctx context.Context, skill string, cursor string, limit int) (GigPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return GigPageDTO{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.Gig{})
	countQuery := r.db.WithContext(ctx).Model(&models.Gig{})
	if skill = strings.TrimSpace(skill); skill != "" {
		query = query.Where("? = ANY(skills)", skill)
		countQuery = countQuery.Where("? = ANY(skills)", skill)
	}
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Gig
	if err := query.
		Order("created_at DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return GigPageDTO{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return GigPageDTO{}, err
	}

	page := GigPageDTO{
		Gigs:       make([]GigDTO, 0, len(rows)),
		Total:      int(total),
		NextCursor: nextCursor,
	}
	for i := range rows {
		page.Gigs = append(page.Gigs, FromModel(&rows[i]))
	}
	return page, nil
}

// DeleteTx removes a gig as part of the caller's transaction. The mirror
// rows referencing it go with it via ON DELETE CASCADE.
func (r *Repository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&models.Gig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
