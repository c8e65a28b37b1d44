package domain

// Role represents user role in the system
type Role string

const (
	RoleUser            Role = "user"
	RoleZonal           Role = "zonal"
	RoleAdmin           Role = "admin"
	RoleCoordinator     Role = "cordinator"
	RoleEvngCoordinator Role = "evngcordinator"
	RoleRegional        Role = "regional"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleZonal, RoleAdmin, RoleCoordinator, RoleEvngCoordinator, RoleRegional}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// ReportType is the kind of outreach a report records.
type ReportType string

const (
	ReportCalling  ReportType = "Calling"
	ReportDTD      ReportType = "DTD"
	ReportCard     ReportType = "Card"
	ReportSurvey   ReportType = "Survey"
	ReportPersonal ReportType = "Personal"
	ReportOther    ReportType = "Other"
)

var reportTypes = []ReportType{ReportCalling, ReportDTD, ReportCard, ReportSurvey, ReportPersonal, ReportOther}

func (t ReportType) Valid() bool {
	for _, v := range reportTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Sentiment is how the contact responded.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

var sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

func (s Sentiment) Valid() bool {
	for _, v := range sentiments {
		if s == v {
			return true
		}
	}
	return false
}

// FollowUpStatus is the follow-up progress of a report. The values are
// listed in their usual order, but any value may be set at any time.
type FollowUpStatus string

const (
	FollowUpFirstContact  FollowUpStatus = "First Contact"
	FollowUpSecondContact FollowUpStatus = "Second Contact"
	FollowUpThirdContact  FollowUpStatus = "Third Contact"
	FollowUpReady         FollowUpStatus = "Ready"
	FollowUpAttended      FollowUpStatus = "Attended"
)

// FollowUpStatuses lists follow-up values in display order.
var FollowUpStatuses = []FollowUpStatus{
	FollowUpFirstContact, FollowUpSecondContact, FollowUpThirdContact, FollowUpReady, FollowUpAttended,
}

func (s FollowUpStatus) Valid() bool {
	for _, v := range FollowUpStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// AppointmentStatus is the state of the appointment attached to a report.
type AppointmentStatus string

const (
	AppointmentNotScheduled AppointmentStatus = "Not Scheduled"
	AppointmentScheduled    AppointmentStatus = "Scheduled"
	AppointmentCompleted    AppointmentStatus = "Completed"
	AppointmentCancelled    AppointmentStatus = "Cancelled"
)

// AppointmentStatuses lists appointment values in display order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentNotScheduled, AppointmentScheduled, AppointmentCompleted, AppointmentCancelled,
}

func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller, passed explicitly to every
// operation that depends on who is asking.
type Identity struct {
	UserID       uint
	ZionID       int64
	Role         Role
	SessionID    string
	RegionID     *uint
	ZoneID       *uint
	SubzoneID    *uint
	FellowshipID *uint
}

// ScopeLevel is how much of the hierarchy a caller can see.
type ScopeLevel int

const (
	ScopeGlobal ScopeLevel = iota
	ScopeRegion
	ScopeZone
	ScopeSubzone
	ScopeFellowship
	ScopeOwn
)

// Scope restricts listings and counters to part of the hierarchy.
type Scope struct {
	Level ScopeLevel
	ID    uint // region/zone/subzone/fellowship/user id, unused for global
}

// ScopeFor derives the visible part of the hierarchy from an identity.
// A coordinator without a hierarchy position only sees their own records.
func ScopeFor(id Identity) Scope {
	switch id.Role {
	case RoleAdmin:
		return Scope{Level: ScopeGlobal}
	case RoleRegional:
		if id.RegionID != nil {
			return Scope{Level: ScopeRegion, ID: *id.RegionID}
		}
	case RoleZonal:
		if id.ZoneID != nil {
			return Scope{Level: ScopeZone, ID: *id.ZoneID}
		}
		if id.SubzoneID != nil {
			return Scope{Level: ScopeSubzone, ID: *id.SubzoneID}
		}
	case RoleCoordinator, RoleEvngCoordinator:
		if id.FellowshipID != nil {
			return Scope{Level: ScopeFellowship, ID: *id.FellowshipID}
		}
	}
	return Scope{Level: ScopeOwn, ID: id.UserID}
}
