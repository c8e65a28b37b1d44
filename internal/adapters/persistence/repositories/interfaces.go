package repositories

import (
	"context"
	"time"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/pagination"
)

// Names of the many2many user sets, as declared on the models.
const (
	AssocZonalCoordinators = "ZonalCoordinators"
	AssocEvngCoordinators  = "EvngCoordinators"
	AssocAllMembers        = "AllMembers"
)

// UserSets maps an association name to its new member list. Associations
// missing from the map are left unchanged; an empty list clears the set.
type UserSets map[string][]models.User

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByZionID(ctx context.Context, zionID int64) (*models.User, error)
	GetByZionIDs(ctx context.Context, zionIDs []int64) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, scope domain.Scope) ([]*models.User, error)
	Paginate(ctx context.Context, scope domain.Scope, params *pagination.Params) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	ExistsByZionID(ctx context.Context, zionID int64, excludeID uint) (bool, error)
	MaxZionID(ctx context.Context) (int64, error)
	IsRequiredCoordinator(ctx context.Context, id uint) (bool, error)
	HasReports(ctx context.Context, id uint) (bool, error)
}

// SessionRepository defines session repository interface
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Rotate(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error
	UpdateCSRF(ctx context.Context, id, csrfHash string) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	RevokeOthers(ctx context.Context, userID uint, keepID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// UserTokenRepository defines email token repository interface
type UserTokenRepository interface {
	Create(ctx context.Context, token *models.UserToken) error
	GetUsable(ctx context.Context, purpose, tokenHash string) (*models.UserToken, error)
	MarkUsed(ctx context.Context, id uint) error
	InvalidateForUser(ctx context.Context, userID uint, purpose string) error
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// RegionRepository defines region repository interface
type RegionRepository interface {
	Create(ctx context.Context, region *models.Region, sets UserSets) error
	GetByID(ctx context.Context, id uint) (*models.Region, error)
	GetByName(ctx context.Context, name string) (*models.Region, error)
	List(ctx context.Context) ([]*models.Region, error)
	Update(ctx context.Context, region *models.Region, sets UserSets) error
	Delete(ctx context.Context, id uint) error
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	HasZones(ctx context.Context, id uint) (bool, error)
}

// ZoneRepository defines zone repository interface
type ZoneRepository interface {
	Create(ctx context.Context, zone *models.Zone, sets UserSets) error
	GetByID(ctx context.Context, id uint) (*models.Zone, error)
	GetByName(ctx context.Context, name string) (*models.Zone, error)
	CountByName(ctx context.Context, name string) (int64, error)
	List(ctx context.Context, regionID uint) ([]*models.Zone, error)
	Update(ctx context.Context, zone *models.Zone, sets UserSets) error
	Delete(ctx context.Context, id uint) error
	ExistsByName(ctx context.Context, regionID uint, name string, excludeID uint) (bool, error)
}

// SubzoneRepository defines subzone repository interface
type SubzoneRepository interface {
	Create(ctx context.Context, subzone *models.Subzone, sets UserSets) error
	GetByID(ctx context.Context, id uint) (*models.Subzone, error)
	GetByName(ctx context.Context, name string) (*models.Subzone, error)
	List(ctx context.Context) ([]*models.Subzone, error)
	Paginate(ctx context.Context, params *pagination.Params) ([]*models.Subzone, int64, error)
	Update(ctx context.Context, subzone *models.Subzone, sets UserSets) error
	Delete(ctx context.Context, id uint) error
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
}

// FellowshipRepository defines fellowship repository interface
type FellowshipRepository interface {
	Create(ctx context.Context, fellowship *models.Fellowship) error
	GetByID(ctx context.Context, id uint) (*models.Fellowship, error)
	GetByName(ctx context.Context, name string) (*models.Fellowship, error)
	List(ctx context.Context) ([]*models.Fellowship, error)
	Paginate(ctx context.Context, params *pagination.Params) ([]*models.Fellowship, int64, error)
	Update(ctx context.Context, fellowship *models.Fellowship) error
	Delete(ctx context.Context, id uint) error
}

// ReportFilter narrows report listings. Zero values are ignored.
type ReportFilter struct {
	Scope          domain.Scope
	UserID         uint
	Fellowship     string
	Status         string
	FollowUpStatus string
}

// ReportRepository defines report repository interface
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]*models.Report, error)
	Paginate(ctx context.Context, filter ReportFilter, params *pagination.Params) ([]*models.Report, int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}
