package repositories

import (
	"context"

	"evapod/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// zoneRepository implements ZoneRepository interface
type zoneRepository struct {
	db *gorm.DB
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(db *gorm.DB) ZoneRepository {
	return &zoneRepository{db: db}
}

func (r *zoneRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Region").
		Preload("RegionalCoordinator").
		Preload("ZonalCoordinator").
		Preload(AssocEvngCoordinators, orderUsers)
}

// Create creates a zone and its evangelism coordinator set
func (r *zoneRepository) Create(ctx context.Context, zone *models.Zone, sets UserSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(zone).Error; err != nil {
			return err
		}
		return replaceUserSets(tx, zone, sets)
	})
}

// GetByID gets a zone by ID
func (r *zoneRepository) GetByID(ctx context.Context, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := r.withRelations(ctx).Where("id = ?", id).First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

// GetByName gets the first zone with the given name. Zone names repeat only
// across regions, so the lowest id wins.
func (r *zoneRepository) GetByName(ctx context.Context, name string) (*models.Zone, error) {
	var zone models.Zone
	if err := r.withRelations(ctx).Where("name = ?", name).Order("id ASC").First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

// CountByName counts zones with the name across all regions
func (r *zoneRepository) CountByName(ctx context.Context, name string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Zone{}).Where("name = ?", name).Count(&count).Error
	return count, err
}

// List lists zones ordered by id, optionally limited to one region
func (r *zoneRepository) List(ctx context.Context, regionID uint) ([]*models.Zone, error) {
	var zones []*models.Zone
	query := r.withRelations(ctx)
	if regionID != 0 {
		query = query.Where("zones.region_id = ?", regionID)
	}
	err := query.Order("zones.id ASC").Find(&zones).Error
	return zones, err
}

// Update saves zone columns and replaces the given coordinator sets
func (r *zoneRepository) Update(ctx context.Context, zone *models.Zone, sets UserSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(zone).Error; err != nil {
			return err
		}
		return replaceUserSets(tx, zone, sets)
	})
}

// Delete removes a zone and detaches subzones, fellowships and users from it
func (r *zoneRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearUserSets(tx, &models.Zone{ID: id}, AssocEvngCoordinators); err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Subzone{}, &models.Fellowship{}, &models.User{}} {
			if err := tx.Model(model).Where("zone_id = ?", id).Update("zone_id", nil).Error; err != nil {
				return err
			}
		}
		return deleteByID(tx, &models.Zone{}, id)
	})
}

// ExistsByName checks if the name is taken by another zone in the region
func (r *zoneRepository) ExistsByName(ctx context.Context, regionID uint, name string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Zone{}, excludeID, "region_id = ? AND name = ?", regionID, name)
}
