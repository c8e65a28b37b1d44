package models

import "time"

// UserSummary is how a referenced user appears inside other resources
type UserSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	ZionID int64  `json:"zionId"`
}

// RefSummary is how a referenced hierarchy record appears inside other resources
type RefSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, ZionID: u.ZionID}
}

func summarizeUsers(users []User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, UserSummary{ID: users[i].ID, Name: users[i].Name, ZionID: users[i].ZionID})
	}
	return out
}

func (r *Region) Summary() *RefSummary {
	if r == nil || r.ID == 0 {
		return nil
	}
	return &RefSummary{ID: r.ID, Name: r.Name}
}

func (z *Zone) Summary() *RefSummary {
	if z == nil || z.ID == 0 {
		return nil
	}
	return &RefSummary{ID: z.ID, Name: z.Name}
}

func (s *Subzone) Summary() *RefSummary {
	if s == nil || s.ID == 0 {
		return nil
	}
	return &RefSummary{ID: s.ID, Name: s.Name}
}

func (f *Fellowship) Summary() *RefSummary {
	if f == nil || f.ID == 0 {
		return nil
	}
	return &RefSummary{ID: f.ID, Name: f.Name}
}

// RegionResponse represents region data for API response
type RegionResponse struct {
	ID                  uint          `json:"id"`
	Name                string        `json:"name"`
	RegionalCoordinator *UserSummary  `json:"regionalCoordinator"`
	ZonalCoordinators   []UserSummary `json:"zonalCoordinators"`
	EvngCoordinators    []UserSummary `json:"evngCoordinators"`
	TotalMembers        int64         `json:"totalMembers"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

func (r *Region) ToResponse() *RegionResponse {
	return &RegionResponse{
		ID:                  r.ID,
		Name:                r.Name,
		RegionalCoordinator: r.RegionalCoordinator.Summary(),
		ZonalCoordinators:   summarizeUsers(r.ZonalCoordinators),
		EvngCoordinators:    summarizeUsers(r.EvngCoordinators),
		TotalMembers:        r.TotalMembers,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// ZoneResponse represents zone data for API response
type ZoneResponse struct {
	ID                  uint          `json:"id"`
	Name                string        `json:"name"`
	Region              *RefSummary   `json:"region"`
	RegionalCoordinator *UserSummary  `json:"regionalCoordinator"`
	ZonalCoordinator    *UserSummary  `json:"zonalCoordinator"`
	EvngCoordinators    []UserSummary `json:"evngCoordinators"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

func (z *Zone) ToResponse() *ZoneResponse {
	return &ZoneResponse{
		ID:                  z.ID,
		Name:                z.Name,
		Region:              z.Region.Summary(),
		RegionalCoordinator: z.RegionalCoordinator.Summary(),
		ZonalCoordinator:    z.ZonalCoordinator.Summary(),
		EvngCoordinators:    summarizeUsers(z.EvngCoordinators),
		CreatedAt:           z.CreatedAt,
		UpdatedAt:           z.UpdatedAt,
	}
}

// SubzoneResponse represents subzone data for API response
type SubzoneResponse struct {
	ID               uint          `json:"id"`
	Name             string        `json:"name"`
	Zone             *RefSummary   `json:"zone"`
	ZonalCoordinator *UserSummary  `json:"zonalCoordinator"`
	EvngCoordinator  *UserSummary  `json:"evngCoordinator"`
	TotalMembers     int           `json:"totalMembers"`
	AllMembers       []UserSummary `json:"allMembers"`
	Fellowships      []RefSummary  `json:"fellowships"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (s *Subzone) ToResponse() *SubzoneResponse {
	fellowships := make([]RefSummary, 0, len(s.Fellowships))
	for i := range s.Fellowships {
		fellowships = append(fellowships, RefSummary{ID: s.Fellowships[i].ID, Name: s.Fellowships[i].Name})
	}

	return &SubzoneResponse{
		ID:               s.ID,
		Name:             s.Name,
		Zone:             s.Zone.Summary(),
		ZonalCoordinator: s.ZonalCoordinator.Summary(),
		EvngCoordinator:  s.EvngCoordinator.Summary(),
		TotalMembers:     s.TotalMembers,
		AllMembers:       summarizeUsers(s.AllMembers),
		Fellowships:      fellowships,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// FellowshipResponse represents fellowship data for API response
type FellowshipResponse struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	Zone             *RefSummary  `json:"zone"`
	Subzone          *RefSummary  `json:"subZone"`
	Coordinator      *UserSummary `json:"coordinator"`
	EvngCoordinator  *UserSummary `json:"evngCoordinator"`
	ZonalCoordinator *UserSummary `json:"zonalCoordinator"`
	TotalMembers     int          `json:"totalMembers"`
	Address          string       `json:"address"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (f *Fellowship) ToResponse() *FellowshipResponse {
	return &FellowshipResponse{
		ID:               f.ID,
		Name:             f.Name,
		Zone:             f.Zone.Summary(),
		Subzone:          f.Subzone.Summary(),
		Coordinator:      f.Coordinator.Summary(),
		EvngCoordinator:  f.EvngCoordinator.Summary(),
		ZonalCoordinator: f.ZonalCoordinator.Summary(),
		TotalMembers:     f.TotalMembers,
		Address:          f.Address,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// UserResponse represents user data for API response
type UserResponse struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       string      `json:"role"`
	ZionID     int64       `json:"zionId"`
	Fellowship *RefSummary `json:"fellowship"`
	Subzone    *RefSummary `json:"subZone"`
	Zone       *RefSummary `json:"zone"`
	Region     *RefSummary `json:"region"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	Gender     string      `json:"gender"`
	DOB        *time.Time  `json:"dob"`
	IsVerified bool        `json:"isVerified"`
	IsBlocked  bool        `json:"isBlocked"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		ZionID:     u.ZionID,
		Fellowship: u.Fellowship.Summary(),
		Subzone:    u.Subzone.Summary(),
		Zone:       u.Zone.Summary(),
		Region:     u.Region.Summary(),
		Phone:      u.Phone,
		Address:    u.Address,
		Gender:     u.Gender,
		DOB:        u.DOB,
		IsVerified: u.IsVerified,
		IsBlocked:  u.IsBlocked,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ReportResponse represents report data for API response
type ReportResponse struct {
	ID           uint         `json:"id"`
	User         *UserSummary `json:"user"`
	Fellowship   string       `json:"fellowship"`
	TypeOfReport string       `json:"typeOfReport"`
	Date         time.Time    `json:"date"`
	HearerName   string       `json:"hearerName"`
	NoOfHearers  int          `json:"noOfHearers"`
	Location     string       `json:"location"`
	MobileNumber string       `json:"mobileNumber"`
	Status       string       `json:"status"`
	Remarks      string       `json:"remarks"`

	FollowUpStatus   string     `json:"followUpStatus"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate"`
	FollowUpRemarks  string     `json:"followUpRemarks"`

	AppointmentDate     *time.Time `json:"appointmentDate"`
	AppointmentTime     *string    `json:"appointmentTime"`
	AppointmentLocation *string    `json:"appointmentLocation"`
	AppointmentStatus   string     `json:"appointmentStatus"`
	EvangelistAssigned  string     `json:"evangelistAssigned"`
	AppointmentRemarks  string     `json:"appointmentRemarks"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Report) ToResponse() *ReportResponse {
	return &ReportResponse{
		ID:                  r.ID,
		User:                r.User.Summary(),
		Fellowship:          r.Fellowship,
		TypeOfReport:        r.TypeOfReport,
		Date:                r.Date,
		HearerName:          r.HearerName,
		NoOfHearers:         r.NoOfHearers,
		Location:            r.Location,
		MobileNumber:        r.MobileNumber,
		Status:              r.Status,
		Remarks:             r.Remarks,
		FollowUpStatus:      r.FollowUpStatus,
		NextFollowUpDate:    r.NextFollowUpDate,
		FollowUpRemarks:     r.FollowUpRemarks,
		AppointmentDate:     r.AppointmentDate,
		AppointmentTime:     r.AppointmentTime,
		AppointmentLocation: r.AppointmentLocation,
		AppointmentStatus:   r.AppointmentStatus,
		EvangelistAssigned:  r.EvangelistAssigned,
		AppointmentRemarks:  r.AppointmentRemarks,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}
