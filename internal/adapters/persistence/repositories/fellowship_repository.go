package repositories

import (
	"context"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fellowshipRepository implements FellowshipRepository interface
type fellowshipRepository struct {
	db *gorm.DB
}

// NewFellowshipRepository creates a new fellowship repository
func NewFellowshipRepository(db *gorm.DB) FellowshipRepository {
	return &fellowshipRepository{db: db}
}

func withFellowshipRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Zone").
		Preload("Subzone").
		Preload("Coordinator").
		Preload("EvngCoordinator").
		Preload("ZonalCoordinator")
}

// Create creates a new fellowship
func (r *fellowshipRepository) Create(ctx context.Context, fellowship *models.Fellowship) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(fellowship).Error
}

// GetByID gets a fellowship by ID
func (r *fellowshipRepository) GetByID(ctx context.Context, id uint) (*models.Fellowship, error) {
	var fellowship models.Fellowship
	err := r.db.WithContext(ctx).Scopes(withFellowshipRelations).Where("id = ?", id).First(&fellowship).Error
	if err != nil {
		return nil, err
	}
	return &fellowship, nil
}

// GetByName gets the oldest fellowship with the given name
func (r *fellowshipRepository) GetByName(ctx context.Context, name string) (*models.Fellowship, error) {
	var fellowship models.Fellowship
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&fellowship).Error; err != nil {
		return nil, err
	}
	return &fellowship, nil
}

// List lists all fellowships ordered by id
func (r *fellowshipRepository) List(ctx context.Context) ([]*models.Fellowship, error) {
	var fellowships []*models.Fellowship
	err := r.db.WithContext(ctx).
		Scopes(withFellowshipRelations).
		Order("fellowships.id ASC").
		Find(&fellowships).Error
	return fellowships, err
}

// Paginate lists fellowships with search over name and address
func (r *fellowshipRepository) Paginate(ctx context.Context, params *pagination.Params) ([]*models.Fellowship, int64, error) {
	var fellowships []*models.Fellowship
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Fellowship{})
	if pattern := params.SearchPattern(); pattern != "" {
		query = query.Where("LOWER(fellowships.name) LIKE ? OR LOWER(fellowships.address) LIKE ?", pattern, pattern)
	}
	if params.Fellowship != "" {
		query = query.Where("fellowships.id IN (?)", fellowshipRefs(query, params.Fellowship))
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(withFellowshipRelations, page("fellowships", params)).
		Find(&fellowships).Error
	if err != nil {
		return nil, 0, err
	}

	return fellowships, total, nil
}

// Update saves all fellowship columns
func (r *fellowshipRepository) Update(ctx context.Context, fellowship *models.Fellowship) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(fellowship).Error
}

// Delete removes a fellowship and detaches its users
func (r *fellowshipRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("fellowship_id = ?", id).Update("fellowship_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Fellowship{}, id)
	})
}
