package services

import (
	"context"

	"evapod/internal/core/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DashboardService computes the summary counters
type DashboardService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, logger: logger}
}

// DashboardStats is the flat counter object. Every counter is present and
// non-negative, including on an empty database.
type DashboardStats struct {
	// Hierarchy
	TotalRegions     int64 `json:"totalRegions"`
	TotalZones       int64 `json:"totalZones"`
	TotalSubzones    int64 `json:"totalSubzones"`
	TotalFellowships int64 `json:"totalFellowships"`
	TotalUsers       int64 `json:"totalUsers"`

	// Reports
	TotalReports    int64 `json:"totalReports"`
	PositiveReports int64 `json:"positiveReports"`
	NegativeReports int64 `json:"negativeReports"`
	NeutralReports  int64 `json:"neutralReports"`

	// Coordinators
	RegionalCoordinators int64 `json:"regionalCoordinators"`
	ZonalCoordinators    int64 `json:"zonalCoordinators"`
	Coordinators         int64 `json:"coordinators"`
	EvngCoordinators     int64 `json:"evngCoordinators"`

	FollowUp     map[string]int64 `json:"followUp"`
	Appointments map[string]int64 `json:"appointments"`
}

func newDashboardStats() *DashboardStats {
	stats := &DashboardStats{
		FollowUp:     make(map[string]int64, len(domain.FollowUpStatuses)),
		Appointments: make(map[string]int64, len(domain.AppointmentStatuses)),
	}
	for _, s := range domain.FollowUpStatuses {
		stats.FollowUp[string(s)] = 0
	}
	for _, s := range domain.AppointmentStatuses {
		stats.Appointments[string(s)] = 0
	}
	return stats
}

// GetStats returns the counters visible to the caller
func (s *DashboardService) GetStats(ctx context.Context, identity domain.Identity) (*DashboardStats, error) {
	scope := domain.ScopeFor(identity)
	data := newDashboardStats()
	db := s.db.WithContext(ctx)

	// Hierarchy counts
	counts := []struct {
		table string
		dest  *int64
	}{
		{"regions", &data.TotalRegions},
		{"zones", &data.TotalZones},
		{"subzones", &data.TotalSubzones},
		{"fellowships", &data.TotalFellowships},
	}
	if scope.Level != domain.ScopeOwn {
		for _, c := range counts {
			if err := s.hierarchy(db, scope, c.table).Count(c.dest).Error; err != nil {
				return nil, err
			}
		}
	}

	// User counts by role
	if err := s.users(db, scope).Count(&data.TotalUsers).Error; err != nil {
		return nil, err
	}
	roles := []struct {
		role domain.Role
		dest *int64
	}{
		{domain.RoleRegional, &data.RegionalCoordinators},
		{domain.RoleZonal, &data.ZonalCoordinators},
		{domain.RoleCoordinator, &data.Coordinators},
		{domain.RoleEvngCoordinator, &data.EvngCoordinators},
	}
	for _, r := range roles {
		if err := s.users(db, scope).Where("role = ?", r.role).Count(r.dest).Error; err != nil {
			return nil, err
		}
	}

	// Report counts
	if err := s.reports(db, scope).Count(&data.TotalReports).Error; err != nil {
		return nil, err
	}
	sentiments := []struct {
		status domain.Sentiment
		dest   *int64
	}{
		{domain.SentimentPositive, &data.PositiveReports},
		{domain.SentimentNegative, &data.NegativeReports},
		{domain.SentimentNeutral, &data.NeutralReports},
	}
	for _, st := range sentiments {
		if err := s.reports(db, scope).Where("status = ?", st.status).Count(st.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := s.groupReports(db, scope, "follow_up_status", data.FollowUp); err != nil {
		return nil, err
	}
	if err := s.groupReports(db, scope, "appointment_status", data.Appointments); err != nil {
		return nil, err
	}

	s.logger.Debug("dashboard stats computed",
		zap.Uint("user_id", identity.UserID),
		zap.Int("scope", int(scope.Level)),
		zap.Int64("reports", data.TotalReports),
	)
	return data, nil
}

// users selects users inside the scope
func (s *DashboardService) users(db *gorm.DB, scope domain.Scope) *gorm.DB {
	q := db.Table("users")
	switch scope.Level {
	case domain.ScopeRegion:
		q = q.Where("region_id = ?", scope.ID)
	case domain.ScopeZone:
		q = q.Where("zone_id = ?", scope.ID)
	case domain.ScopeSubzone:
		q = q.Where("subzone_id = ?", scope.ID)
	case domain.ScopeFellowship:
		q = q.Where("fellowship_id = ?", scope.ID)
	case domain.ScopeOwn:
		q = q.Where("id = ?", scope.ID)
	}
	return q
}

// reports selects reports owned by users inside the scope
func (s *DashboardService) reports(db *gorm.DB, scope domain.Scope) *gorm.DB {
	q := db.Table("reports")
	switch scope.Level {
	case domain.ScopeGlobal:
		return q
	case domain.ScopeOwn:
		return q.Where("user_id = ?", scope.ID)
	}
	return q.Where("user_id IN (?)", s.users(db.Session(&gorm.Session{NewDB: true}), scope).Select("id"))
}

// hierarchy selects rows of a hierarchy table that fall under the scope
func (s *DashboardService) hierarchy(db *gorm.DB, scope domain.Scope, table string) *gorm.DB {
	q := db.Table(table)
	fresh := func() *gorm.DB { return db.Session(&gorm.Session{NewDB: true}) }

	switch scope.Level {
	case domain.ScopeGlobal:
		return q

	case domain.ScopeRegion:
		zones := fresh().Table("zones").Select("id").Where("region_id = ?", scope.ID)
		switch table {
		case "regions":
			return q.Where("id = ?", scope.ID)
		case "zones":
			return q.Where("region_id = ?", scope.ID)
		default:
			return q.Where("zone_id IN (?)", zones)
		}

	case domain.ScopeZone:
		switch table {
		case "regions":
			return q.Where("id IN (?)", fresh().Table("zones").Select("region_id").Where("id = ?", scope.ID))
		case "zones":
			return q.Where("id = ?", scope.ID)
		default:
			return q.Where("zone_id = ?", scope.ID)
		}

	case domain.ScopeSubzone:
		switch table {
		case "subzones":
			return q.Where("id = ?", scope.ID)
		case "fellowships":
			return q.Where("subzone_id = ?", scope.ID)
		}

	case domain.ScopeFellowship:
		if table == "fellowships" {
			return q.Where("id = ?", scope.ID)
		}
	}

	// Levels above the caller's position are not counted.
	return q.Where("1 = 0")
}

// groupReports fills counts per distinct value of column. Values outside
// the preset keys are kept as well.
func (s *DashboardService) groupReports(db *gorm.DB, scope domain.Scope, column string, into map[string]int64) error {
	var rows []struct {
		Value string
		Total int64
	}
	err := s.reports(db, scope).
		Select(column + " AS value, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		into[row.Value] = row.Total
	}
	return nil
}
