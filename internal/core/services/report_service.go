package services

import (
	"context"
	"strings"
	"time"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/sanitize"

	"go.uber.org/zap"
)

// ReportService handles evangelism reports. Sentiment, follow-up and
// appointment are independent axes; any value may be set at any time.
type ReportService struct {
	reports repositories.ReportRepository
	users   repositories.UserRepository
	resolve *Resolver
	logger  *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reports repositories.ReportRepository,
	users repositories.UserRepository,
	resolve *Resolver,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reports: reports,
		users:   users,
		resolve: resolve,
		logger:  logger,
	}
}

// ReportInput is the create/update payload. On update only the supplied
// fields are written.
type ReportInput struct {
	Fellowship   optional.Field[string] `json:"fellowship"`
	TypeOfReport optional.Field[string] `json:"typeOfReport" enums:"Calling,DTD,Card,Survey,Personal,Other"`
	Date         optional.Date          `json:"date" swaggertype:"string" example:"2024-03-01"`
	HearerName   optional.Field[string] `json:"hearerName"`
	NoOfHearers  optional.Field[int]    `json:"noOfHearers" swaggertype:"integer"`
	Location     optional.Field[string] `json:"location"`
	MobileNumber optional.Field[string] `json:"mobileNumber"`
	Status       optional.Field[string] `json:"status" enums:"Positive,Negative,Neutral"`
	Remarks      optional.Field[string] `json:"remarks"`

	FollowUpStatus   optional.Field[string] `json:"followUpStatus" enums:"First Contact,Second Contact,Third Contact,Ready,Attended"`
	NextFollowUpDate optional.Date          `json:"nextFollowUpDate" swaggertype:"string"`
	FollowUpRemarks  optional.Field[string] `json:"followUpRemarks"`

	AppointmentDate     optional.Date          `json:"appointmentDate" swaggertype:"string"`
	AppointmentTime     optional.Field[string] `json:"appointmentTime" example:"17:30"`
	AppointmentLocation optional.Field[string] `json:"appointmentLocation"`
	AppointmentStatus   optional.Field[string] `json:"appointmentStatus" enums:"Not Scheduled,Scheduled,Completed,Cancelled"`
	EvangelistAssigned  optional.Field[string] `json:"evangelistAssigned"`
	AppointmentRemarks  optional.Field[string] `json:"appointmentRemarks"`
}

// Create records a report owned by the caller. The fellowship defaults to
// the caller's own fellowship.
func (s *ReportService) Create(ctx context.Context, identity domain.Identity, input *ReportInput) (*models.ReportResponse, error) {
	if !input.TypeOfReport.HasValue() {
		return nil, domain.Invalid("typeOfReport is required")
	}
	if !input.Date.HasValue() {
		return nil, domain.Invalid("date is required")
	}
	if !input.HearerName.HasValue() {
		return nil, domain.Invalid("hearerName is required")
	}
	if !input.Status.HasValue() {
		return nil, domain.Invalid("status is required")
	}

	fields, err := reportFields(input)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		UserID:            identity.UserID,
		NoOfHearers:       1,
		FollowUpStatus:    string(domain.FollowUpFirstContact),
		AppointmentStatus: string(domain.AppointmentNotScheduled),
	}
	assignReportFields(report, fields)

	if report.Fellowship == "" {
		owner, err := s.users.GetByID(ctx, identity.UserID)
		if err != nil {
			return nil, notFound(err, "user")
		}
		if owner.Fellowship != nil {
			report.Fellowship = owner.Fellowship.Name
		}
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("report created",
		zap.Uint("id", report.ID),
		zap.Uint("user_id", report.UserID),
		zap.String("type", report.TypeOfReport),
		zap.String("status", report.Status),
	)
	return s.Get(ctx, identity, report.ID)
}

// Get gets a report visible to the caller
func (s *ReportService) Get(ctx context.Context, identity domain.Identity, id uint) (*models.ReportResponse, error) {
	report, err := s.visible(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return report.ToResponse(), nil
}

// ListFilter holds the listing filters taken from the request
type ListFilter struct {
	Fellowship     string
	Status         string
	FollowUpStatus string
	UserZionID     int64
}

// List lists the reports visible to the caller, newest first
func (s *ReportService) List(ctx context.Context, identity domain.Identity, in ListFilter) ([]*models.ReportResponse, error) {
	filter, err := s.filter(ctx, identity, in)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return reportResponses(reports), nil
}

// ListOwn lists the caller's own reports, or those of another user in the
// caller's scope when zionID is given
func (s *ReportService) ListOwn(ctx context.Context, identity domain.Identity, zionID int64) ([]*models.ReportResponse, error) {
	if zionID == 0 {
		zionID = identity.ZionID
	}
	return s.List(ctx, identity, ListFilter{UserZionID: zionID})
}

// Paginate lists one page of the reports visible to the caller
func (s *ReportService) Paginate(ctx context.Context, identity domain.Identity, in ListFilter, params *pagination.Params) (*pagination.Page[*models.ReportResponse], error) {
	filter, err := s.filter(ctx, identity, in)
	if err != nil {
		return nil, err
	}
	reports, total, err := s.reports.Paginate(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(reportResponses(reports), params, total), nil
}

// Update writes only the supplied fields. Changing one status axis leaves
// the other two untouched.
func (s *ReportService) Update(ctx context.Context, identity domain.Identity, id uint, input *ReportInput) (*models.ReportResponse, error) {
	if _, err := s.visible(ctx, identity, id); err != nil {
		return nil, err
	}

	fields, err := reportFields(input)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.reports.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		s.logger.Info("report updated", zap.Uint("id", id), zap.Int("fields", len(fields)), zap.Uint("by", identity.UserID))
	}
	return s.Get(ctx, identity, id)
}

// Delete deletes a report visible to the caller
func (s *ReportService) Delete(ctx context.Context, identity domain.Identity, id uint) error {
	if _, err := s.visible(ctx, identity, id); err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return notFound(err, "report")
	}
	s.logger.Info("report deleted", zap.Uint("id", id), zap.Uint("by", identity.UserID))
	return nil
}

// visible loads a report and hides it when it lies outside the caller's scope
func (s *ReportService) visible(ctx context.Context, identity domain.Identity, id uint) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "report")
	}

	scope := domain.ScopeFor(identity)
	if scope.Level == domain.ScopeGlobal || report.UserID == identity.UserID {
		return report, nil
	}
	if report.User == nil || !inScope(scope, report.User) {
		return nil, domain.NotFound("report")
	}
	return report, nil
}

func (s *ReportService) filter(ctx context.Context, identity domain.Identity, in ListFilter) (repositories.ReportFilter, error) {
	filter := repositories.ReportFilter{
		Scope:      domain.ScopeFor(identity),
		Fellowship: strings.TrimSpace(in.Fellowship),
	}
	if in.Status != "" {
		if !domain.Sentiment(in.Status).Valid() {
			return filter, domain.Invalid("invalid status %q", in.Status)
		}
		filter.Status = in.Status
	}
	if in.FollowUpStatus != "" {
		if !domain.FollowUpStatus(in.FollowUpStatus).Valid() {
			return filter, domain.Invalid("invalid followUpStatus %q", in.FollowUpStatus)
		}
		filter.FollowUpStatus = in.FollowUpStatus
	}
	if in.UserZionID != 0 {
		if in.UserZionID == identity.ZionID {
			filter.UserID = identity.UserID
		} else {
			owner, err := s.resolve.User(ctx, "user", in.UserZionID)
			if err != nil {
				return filter, err
			}
			filter.UserID = owner.ID
		}
	}
	return filter, nil
}

func inScope(scope domain.Scope, user *models.User) bool {
	var pos *uint
	switch scope.Level {
	case domain.ScopeRegion:
		pos = user.RegionID
	case domain.ScopeZone:
		pos = user.ZoneID
	case domain.ScopeSubzone:
		pos = user.SubzoneID
	case domain.ScopeFellowship:
		pos = user.FellowshipID
	case domain.ScopeOwn:
		return user.ID == scope.ID
	default:
		return true
	}
	return pos != nil && *pos == scope.ID
}

// reportFields validates the supplied fields and maps them to columns
func reportFields(in *ReportInput) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if in.TypeOfReport.Set {
		if !domain.ReportType(in.TypeOfReport.Value).Valid() {
			return nil, domain.Invalid("invalid typeOfReport %q", in.TypeOfReport.Value)
		}
		fields["type_of_report"] = in.TypeOfReport.Value
	}
	if in.Date.Set {
		if in.Date.Null {
			return nil, domain.Invalid("date cannot be cleared")
		}
		fields["date"] = in.Date.Value
	}
	if in.HearerName.Set {
		name := sanitize.Text(in.HearerName.Value)
		if name == "" {
			return nil, domain.Invalid("hearerName cannot be empty")
		}
		fields["hearer_name"] = name
	}
	if in.NoOfHearers.Set {
		if in.NoOfHearers.Null || in.NoOfHearers.Value < 1 {
			return nil, domain.Invalid("noOfHearers must be at least 1")
		}
		fields["no_of_hearers"] = in.NoOfHearers.Value
	}
	if in.Status.Set {
		if !domain.Sentiment(in.Status.Value).Valid() {
			return nil, domain.Invalid("invalid status %q", in.Status.Value)
		}
		fields["status"] = in.Status.Value
	}
	if in.FollowUpStatus.Set {
		if !domain.FollowUpStatus(in.FollowUpStatus.Value).Valid() {
			return nil, domain.Invalid("invalid followUpStatus %q", in.FollowUpStatus.Value)
		}
		fields["follow_up_status"] = in.FollowUpStatus.Value
	}
	if in.AppointmentStatus.Set {
		if !domain.AppointmentStatus(in.AppointmentStatus.Value).Valid() {
			return nil, domain.Invalid("invalid appointmentStatus %q", in.AppointmentStatus.Value)
		}
		fields["appointment_status"] = in.AppointmentStatus.Value
	}
	if in.AppointmentTime.HasValue() && strings.TrimSpace(in.AppointmentTime.Value) != "" {
		if _, err := time.Parse("15:04", strings.TrimSpace(in.AppointmentTime.Value)); err != nil {
			return nil, domain.Invalid("appointmentTime must be HH:MM")
		}
	}

	texts := map[string]optional.Field[string]{
		"fellowship":          in.Fellowship,
		"location":            in.Location,
		"mobile_number":       in.MobileNumber,
		"remarks":             in.Remarks,
		"follow_up_remarks":   in.FollowUpRemarks,
		"evangelist_assigned": in.EvangelistAssigned,
		"appointment_remarks": in.AppointmentRemarks,
	}
	for column, f := range texts {
		if f.Set {
			fields[column] = sanitize.Text(f.Value)
		}
	}

	nullableTexts := map[string]optional.Field[string]{
		"appointment_time":     in.AppointmentTime,
		"appointment_location": in.AppointmentLocation,
	}
	for column, f := range nullableTexts {
		if f.Set {
			fields[column] = sanitize.TextPtr(f.Ptr())
		}
	}

	dates := map[string]optional.Date{
		"next_follow_up_date": in.NextFollowUpDate,
		"appointment_date":    in.AppointmentDate,
	}
	for column, d := range dates {
		if d.Set {
			fields[column] = d.Ptr()
		}
	}

	return fields, nil
}

// assignReportFields copies validated columns onto a new report
func assignReportFields(r *models.Report, fields map[string]interface{}) {
	for column, v := range fields {
		switch column {
		case "type_of_report":
			r.TypeOfReport = v.(string)
		case "date":
			r.Date = v.(time.Time)
		case "hearer_name":
			r.HearerName = v.(string)
		case "no_of_hearers":
			r.NoOfHearers = v.(int)
		case "status":
			r.Status = v.(string)
		case "follow_up_status":
			r.FollowUpStatus = v.(string)
		case "appointment_status":
			r.AppointmentStatus = v.(string)
		case "fellowship":
			r.Fellowship = v.(string)
		case "location":
			r.Location = v.(string)
		case "mobile_number":
			r.MobileNumber = v.(string)
		case "remarks":
			r.Remarks = v.(string)
		case "follow_up_remarks":
			r.FollowUpRemarks = v.(string)
		case "evangelist_assigned":
			r.EvangelistAssigned = v.(string)
		case "appointment_remarks":
			r.AppointmentRemarks = v.(string)
		case "appointment_time":
			r.AppointmentTime = v.(*string)
		case "appointment_location":
			r.AppointmentLocation = v.(*string)
		case "next_follow_up_date":
			r.NextFollowUpDate = v.(*time.Time)
		case "appointment_date":
			r.AppointmentDate = v.(*time.Time)
		}
	}
}

func reportResponses(reports []*models.Report) []*models.ReportResponse {
	out := make([]*models.ReportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, report.ToResponse())
	}
	return out
}
