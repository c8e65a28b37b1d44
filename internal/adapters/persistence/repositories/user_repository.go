package repositories

import (
	"context"
	"strings"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) withPosition(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Fellowship").
		Preload("Subzone").
		Preload("Zone").
		Preload("Region")
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

// GetByID gets a user by ID with its hierarchy position loaded
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.withPosition(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.withPosition(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByZionID gets a user by zion id
func (r *userRepository) GetByZionID(ctx context.Context, zionID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("zion_id = ?", zionID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByZionIDs gets every user whose zion id is listed. Missing ids are
// simply absent from the result.
func (r *userRepository) GetByZionIDs(ctx context.Context, zionIDs []int64) ([]models.User, error) {
	var users []models.User
	if len(zionIDs) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("zion_id IN ?", zionIDs).Order("id ASC").Find(&users).Error
	return users, err
}

// Update saves all user columns. Loaded relations are not written back.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// UpdateFields updates only the given columns
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// optionalCoordinators lists the nullable coordinator columns per table
var optionalCoordinators = []struct {
	model   interface{}
	columns []string
}{
	{&models.Region{}, []string{"regional_coordinator_id"}},
	{&models.Zone{}, []string{"regional_coordinator_id", "zonal_coordinator_id"}},
	{&models.Fellowship{}, []string{"evng_coordinator_id", "zonal_coordinator_id"}},
}

// Delete removes a user along with its set memberships and sessions, and
// clears the optional coordinator columns that point at it
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"region_zonal_coordinators", "region_evng_coordinators", "zone_evng_coordinators", "subzone_members"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", id).Error; err != nil {
				return err
			}
		}
		for _, ref := range optionalCoordinators {
			for _, column := range ref.columns {
				err := tx.Model(ref.model).Where(column+" = ?", id).Update(column, nil).Error
				if err != nil {
					return err
				}
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserToken{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.User{}, id)
	})
}

// List lists every user visible in scope, ordered by id
func (r *userRepository) List(ctx context.Context, scope domain.Scope) ([]*models.User, error) {
	var users []*models.User
	err := r.withPosition(ctx).
		Scopes(scopeUsers(scope)).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

// Paginate lists users with search over name, email, phone and zion id
func (r *userRepository) Paginate(ctx context.Context, scope domain.Scope, params *pagination.Params) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scopeUsers(scope))
	if pattern := params.SearchPattern(); pattern != "" {
		query = query.Where(
			"LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR users.phone LIKE ? OR "+textColumn(query, "users.zion_id")+" LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if params.Fellowship != "" {
		query = query.Where("users.fellowship_id IN (?)", fellowshipRefs(query, params.Fellowship))
	}

	// Count total
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Fellowship").
		Preload("Subzone").
		Preload("Zone").
		Preload("Region").
		Scopes(page("users", params)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByEmail checks if email exists on another user
func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.User{}, excludeID, "email = ?", strings.ToLower(email))
}

// ExistsByZionID checks if zion id exists on another user
func (r *userRepository) ExistsByZionID(ctx context.Context, zionID int64, excludeID uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.User{}, excludeID, "zion_id = ?", zionID)
}

// MaxZionID returns the highest zion id in use, or 0 when there are no users
func (r *userRepository) MaxZionID(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("COALESCE(MAX(zion_id), 0)").
		Scan(&max).Error
	return max, err
}

// IsRequiredCoordinator reports whether the user fills a coordinator slot
// that cannot be left empty
func (r *userRepository) IsRequiredCoordinator(ctx context.Context, id uint) (bool, error) {
	db := r.db.WithContext(ctx)
	found, err := exists(db, &models.Subzone{}, 0, "zonal_coordinator_id = ? OR evng_coordinator_id = ?", id, id)
	if err != nil || found {
		return found, err
	}
	return exists(db, &models.Fellowship{}, 0, "coordinator_id = ?", id)
}

// HasReports reports whether the user owns any report
func (r *userRepository) HasReports(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Report{}, 0, "user_id = ?", id)
}
