package repositories

import (
	"context"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reportRepository implements ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// filtered applies scope and filter fields to a reports query
func filtered(db *gorm.DB, filter ReportFilter) *gorm.DB {
	db = db.Scopes(scopeReports(filter.Scope))
	if filter.UserID != 0 {
		db = db.Where("reports.user_id = ?", filter.UserID)
	}
	if filter.Fellowship != "" {
		db = db.Where("reports.fellowship = ?", filter.Fellowship)
	}
	if filter.Status != "" {
		db = db.Where("reports.status = ?", filter.Status)
	}
	if filter.FollowUpStatus != "" {
		db = db.Where("reports.follow_up_status = ?", filter.FollowUpStatus)
	}
	return db
}

// Create creates a new report
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

// GetByID gets a report by ID with its owner loaded
func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List lists reports newest first
func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]*models.Report, error) {
	var reports []*models.Report
	err := filtered(r.db.WithContext(ctx), filter).
		Preload("User").
		Order("reports.date DESC, reports.id DESC").
		Find(&reports).Error
	return reports, err
}

// Paginate lists reports in id order with search over hearer, location,
// mobile number and owner name
func (r *reportRepository) Paginate(ctx context.Context, filter ReportFilter, params *pagination.Params) ([]*models.Report, int64, error) {
	var reports []*models.Report
	var total int64

	if params.Fellowship != "" {
		filter.Fellowship = params.Fellowship
	}
	query := filtered(r.db.WithContext(ctx).Model(&models.Report{}), filter)
	if pattern := params.SearchPattern(); pattern != "" {
		owners := subquery(query).Model(&models.User{}).Select("id").Where("LOWER(name) LIKE ?", pattern)
		query = query.Where(
			"LOWER(reports.hearer_name) LIKE ? OR LOWER(reports.location) LIKE ? OR reports.mobile_number LIKE ? OR reports.user_id IN (?)",
			pattern, pattern, pattern, owners,
		)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Scopes(page("reports", params)).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// UpdateFields writes only the given columns
func (r *reportRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(fields).Error
}

// Delete deletes a report
func (r *reportRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &models.Report{}, id)
}
