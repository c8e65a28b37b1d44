package repositories

import (
	"context"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subzoneRepository implements SubzoneRepository interface
type subzoneRepository struct {
	db *gorm.DB
}

// NewSubzoneRepository creates a new subzone repository
func NewSubzoneRepository(db *gorm.DB) SubzoneRepository {
	return &subzoneRepository{db: db}
}

func withSubzoneRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Zone").
		Preload("ZonalCoordinator").
		Preload("EvngCoordinator").
		Preload(AssocAllMembers, orderUsers).
		Preload("Fellowships", func(db *gorm.DB) *gorm.DB {
			return db.Order("fellowships.id ASC")
		})
}

// Create creates a subzone and its member set
func (r *subzoneRepository) Create(ctx context.Context, subzone *models.Subzone, sets UserSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(subzone).Error; err != nil {
			return err
		}
		return replaceUserSets(tx, subzone, sets)
	})
}

// GetByID gets a subzone by ID
func (r *subzoneRepository) GetByID(ctx context.Context, id uint) (*models.Subzone, error) {
	var subzone models.Subzone
	err := r.db.WithContext(ctx).Scopes(withSubzoneRelations).Where("id = ?", id).First(&subzone).Error
	if err != nil {
		return nil, err
	}
	return &subzone, nil
}

// GetByName gets a subzone by its unique name
func (r *subzoneRepository) GetByName(ctx context.Context, name string) (*models.Subzone, error) {
	var subzone models.Subzone
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&subzone).Error; err != nil {
		return nil, err
	}
	return &subzone, nil
}

// List lists all subzones ordered by id
func (r *subzoneRepository) List(ctx context.Context) ([]*models.Subzone, error) {
	var subzones []*models.Subzone
	err := r.db.WithContext(ctx).
		Scopes(withSubzoneRelations).
		Order("subzones.id ASC").
		Find(&subzones).Error
	return subzones, err
}

// Paginate lists subzones with search over name. The fellowship filter keeps
// subzones that contain a matching fellowship.
func (r *subzoneRepository) Paginate(ctx context.Context, params *pagination.Params) ([]*models.Subzone, int64, error) {
	var subzones []*models.Subzone
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Subzone{})
	if pattern := params.SearchPattern(); pattern != "" {
		query = query.Where("LOWER(subzones.name) LIKE ?", pattern)
	}
	if params.Fellowship != "" {
		holders := subquery(query).Model(&models.Fellowship{}).
			Select("subzone_id").
			Where("id IN (?)", fellowshipRefs(query, params.Fellowship))
		query = query.Where("subzones.id IN (?)", holders)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(withSubzoneRelations, page("subzones", params)).
		Find(&subzones).Error
	if err != nil {
		return nil, 0, err
	}

	return subzones, total, nil
}

// Update saves subzone columns and replaces the given member sets
func (r *subzoneRepository) Update(ctx context.Context, subzone *models.Subzone, sets UserSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(subzone).Error; err != nil {
			return err
		}
		return replaceUserSets(tx, subzone, sets)
	})
}

// Delete removes a subzone and detaches fellowships and users from it
func (r *subzoneRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearUserSets(tx, &models.Subzone{ID: id}, AssocAllMembers); err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Fellowship{}, &models.User{}} {
			if err := tx.Model(model).Where("subzone_id = ?", id).Update("subzone_id", nil).Error; err != nil {
				return err
			}
		}
		return deleteByID(tx, &models.Subzone{}, id)
	})
}

// ExistsByName checks if a subzone name is taken by another subzone
func (r *subzoneRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Subzone{}, excludeID, "name = ?", name)
}
