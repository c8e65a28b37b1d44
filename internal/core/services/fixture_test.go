package services

import (
	"context"
	"testing"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/config"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/mailer"
	"evapod/internal/pkg/optional"
	"evapod/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	cfg  *config.Config
	mail *mailer.Recorder

	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	tokenRepo   repositories.UserTokenRepository

	regions     *RegionService
	zones       *ZoneService
	subzones    *SubzoneService
	fellowships *FellowshipService
	users       *UserService
	reports     *ReportService
	dashboard   *DashboardService
	otp         *OTPService
	auth        *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	logger := zap.NewNop()
	mail := mailer.NewRecorder()

	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	tokenRepo := repositories.NewUserTokenRepository(db)
	regionRepo := repositories.NewRegionRepository(db)
	zoneRepo := repositories.NewZoneRepository(db)
	subzoneRepo := repositories.NewSubzoneRepository(db)
	fellowshipRepo := repositories.NewFellowshipRepository(db)

	resolver := NewResolver(userRepo, regionRepo, zoneRepo, subzoneRepo, fellowshipRepo)
	users := NewUserService(userRepo, sessionRepo, resolver, logger)
	otp := NewOTPService(0)

	return &fixture{
		db:          db,
		cfg:         cfg,
		mail:        mail,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		regions:     NewRegionService(regionRepo, resolver, logger),
		zones:       NewZoneService(zoneRepo, resolver, logger),
		subzones:    NewSubzoneService(subzoneRepo, resolver, logger),
		fellowships: NewFellowshipService(fellowshipRepo, resolver, logger),
		users:       users,
		reports:     NewReportService(repositories.NewReportRepository(db), userRepo, resolver, logger),
		dashboard:   NewDashboardService(db, logger),
		otp:         otp,
		auth: NewAuthService(users, userRepo, sessionRepo, tokenRepo, otp,
			NewNotificationService(mail, cfg, logger), cfg, logger),
	}
}

// createUser adds a verified user with the given role
func (f *fixture) createUser(t *testing.T, name, email string, role domain.Role) *models.UserResponse {
	t.Helper()
	user, err := f.users.Create(context.Background(), &UserInput{
		Name:     optional.Of(name),
		Email:    optional.Of(email),
		Password: optional.Of("password123"),
		Role:     optional.Of(string(role)),
	})
	require.NoError(t, err)
	return user
}

// identity builds the caller identity from the stored user
func (f *fixture) identity(t *testing.T, userID uint) domain.Identity {
	t.Helper()
	user, err := f.userRepo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return domain.Identity{
		UserID:       user.ID,
		ZionID:       user.ZionID,
		Role:         domain.Role(user.Role),
		RegionID:     user.RegionID,
		ZoneID:       user.ZoneID,
		SubzoneID:    user.SubzoneID,
		FellowshipID: user.FellowshipID,
	}
}

// hierarchy is a region > zone > subzone > fellowship chain
type hierarchy struct {
	region     *models.RegionResponse
	zone       *models.ZoneResponse
	subzone    *models.SubzoneResponse
	fellowship *models.FellowshipResponse
}

// createHierarchy builds a full chain named after suffix, with coordinator
// as the subzone and fellowship coordinator
func (f *fixture) createHierarchy(t *testing.T, suffix string, coordinator *models.UserResponse) hierarchy {
	t.Helper()
	ctx := context.Background()

	region, err := f.regions.Create(ctx, &RegionInput{Name: optional.Of("Region " + suffix)})
	require.NoError(t, err)

	zone, err := f.zones.Create(ctx, &ZoneInput{
		Name:   optional.Of("Zone " + suffix),
		Region: optional.RefID(region.ID),
	})
	require.NoError(t, err)

	subzone, err := f.subzones.Create(ctx, &SubzoneInput{
		Name:             optional.Of("Subzone " + suffix),
		Zone:             optional.RefID(zone.ID),
		ZonalCoordinator: optional.ZionOf(coordinator.ZionID),
		EvngCoordinator:  optional.ZionOf(coordinator.ZionID),
	})
	require.NoError(t, err)

	fellowship, err := f.fellowships.Create(ctx, &FellowshipInput{
		Name:        optional.Of("Fellowship " + suffix),
		Subzone:     optional.RefID(subzone.ID),
		Coordinator: optional.ZionOf(coordinator.ZionID),
	})
	require.NoError(t, err)

	return hierarchy{region: region, zone: zone, subzone: subzone, fellowship: fellowship}
}

// place moves a user into a fellowship and gives them a role
func (f *fixture) place(t *testing.T, userID uint, fellowshipID uint, role domain.Role) {
	t.Helper()
	_, err := f.users.Update(context.Background(), domain.Identity{Role: domain.RoleAdmin}, userID, &UserInput{
		Fellowship: optional.RefID(fellowshipID),
		Role:       optional.Of(string(role)),
	})
	require.NoError(t, err)
}
