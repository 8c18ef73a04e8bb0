package applications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboardhq/gigboard-backend/pkg/db/models"
)

// Repository encapsulates the two mirror tables. Every write goes through a
// transaction handle supplied by the service so both sides commit together.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an applications repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindEntryTx loads the user-side row for a pair inside the transaction.
func (r *Repository) FindEntryTx(tx *gorm.DB, userID, gigID uuid.UUID) (*models.UserGigEntry, error) {
	var entry models.UserGigEntry
	if err := tx.Where("user_id = ? AND gig_id = ?", userID, gigID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindApplicationTx loads the gig-side row for a pair inside the transaction.
func (r *Repository) FindApplicationTx(tx *gorm.DB, gigID, userID uuid.UUID) (*models.GigApplication, error) {
	var app models.GigApplication
	if err := tx.Where("gig_id = ? AND user_id = ?", gigID, userID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// CreatePairTx inserts both mirror rows. The unique indexes on each table
// reject a second row for the same pair.
func (r *Repository) CreatePairTx(tx *gorm.DB, entry *models.UserGigEntry, app *models.GigApplication) error {
	if err := tx.Create(entry).Error; err != nil {
		return err
	}
	return tx.Create(app).Error
}

// SaveEntryTx persists the mutated user-side row.
func (r *Repository) SaveEntryTx(tx *gorm.DB, entry *models.UserGigEntry) error {
	return tx.Save(entry).Error
}

// SaveApplicationTx persists the mutated gig-side row.
func (r *Repository) SaveApplicationTx(tx *gorm.DB, app *models.GigApplication) error {
	return tx.Save(app).Error
}

// ListEntriesForUser returns every relationship the user has touched, oldest
// first with the id as tiebreak so the order is deterministic.
func (r *Repository) ListEntriesForUser(ctx context.Context, userID uuid.UUID) ([]models.UserGigEntry, error) {
	var entries []models.UserGigEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListUserIDsByGig returns the user ids with any relationship to the gig.
func (r *Repository) ListUserIDsByGig(ctx context.Context, gigID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.GigApplication{}).
		Where("gig_id = ?", gigID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListApplicationsByGigIDs returns the applicant rows for each requested gig,
// keyed by gig id. Gigs with no applicants map to an empty slice.
func (r *Repository) ListApplicationsByGigIDs(ctx context.Context, gigIDs []uuid.UUID) (map[uuid.UUID][]models.GigApplication, error) {
	result := make(map[uuid.UUID][]models.GigApplication, len(gigIDs))
	for _, id := range gigIDs {
		result[id] = []models.GigApplication{}
	}
	if len(gigIDs) == 0 {
		return result, nil
	}

	var rows []models.GigApplication
	err := r.db.WithContext(ctx).
		Where("gig_id IN ?", gigIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].GigID] = append(result[rows[i].GigID], rows[i])
	}
	return result, nil
}
