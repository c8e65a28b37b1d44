package repositories

import (
	"context"

	"evapod/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// regionRepository implements RegionRepository interface
type regionRepository struct {
	db *gorm.DB
}

// NewRegionRepository creates a new region repository
func NewRegionRepository(db *gorm.DB) RegionRepository {
	return &regionRepository{db: db}
}

func (r *regionRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("RegionalCoordinator").
		Preload(AssocZonalCoordinators, orderUsers).
		Preload(AssocEvngCoordinators, orderUsers)
}

// Create creates a region and its coordinator sets in one transaction
func (r *regionRepository) Create(ctx context.Context, region *models.Region, sets UserSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(region).Error; err != nil {
			return err
		}
		return replaceUserSets(tx, region, sets)
	})
}

// GetByID gets a region with coordinators and member count loaded
func (r *regionRepository) GetByID(ctx context.Context, id uint) (*models.Region, error) {
	var region models.Region
	if err := r.withRelations(ctx).Where("id = ?", id).First(&region).Error; err != nil {
		return nil, err
	}
	if err := r.fillMemberCounts(ctx, []*models.Region{&region}); err != nil {
		return nil, err
	}
	return &region, nil
}

// GetByName gets a region by its unique name
func (r *regionRepository) GetByName(ctx context.Context, name string) (*models.Region, error) {
	var region models.Region
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&region).Error; err != nil {
		return nil, err
	}
	return &region, nil
}

// List lists all regions ordered by id
func (r *regionRepository) List(ctx context.Context) ([]*models.Region, error) {
	var regions []*models.Region
	if err := r.withRelations(ctx).Order("regions.id ASC").Find(&regions).Error; err != nil {
		return nil, err
	}
	if err := r.fillMemberCounts(ctx, regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// Update saves region columns and replaces the given coordinator sets
func (r *regionRepository) Update(ctx context.Context, region *models.Region, sets UserSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(region).Error; err != nil {
			return err
		}
		return replaceUserSets(tx, region, sets)
	})
}

// Delete removes a region, its coordinator sets and user positions in it
func (r *regionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		region := &models.Region{ID: id}
		if err := clearUserSets(tx, region, AssocZonalCoordinators, AssocEvngCoordinators); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("region_id = ?", id).Update("region_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Region{}, id)
	})
}

// ExistsByName checks if a region name is taken by another region
func (r *regionRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Region{}, excludeID, "name = ?", name)
}

// HasZones checks if any zone still belongs to the region
func (r *regionRepository) HasZones(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Zone{}, 0, "region_id = ?", id)
}

// fillMemberCounts sets TotalMembers from the number of users positioned in
// each region
func (r *regionRepository) fillMemberCounts(ctx context.Context, regions []*models.Region) error {
	if len(regions) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(regions))
	for _, region := range regions {
		ids = append(ids, region.ID)
	}

	var rows []struct {
		RegionID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("region_id, COUNT(*) AS total").
		Where("region_id IN ?", ids).
		Group("region_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.RegionID] = row.Total
	}
	for _, region := range regions {
		region.TotalMembers = counts[region.ID]
	}
	return nil
}
