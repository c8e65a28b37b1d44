package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Hierarchy: Region → Zone → Subzone → Fellowship → User
// ============================================================

// Region represents regions table
type Region struct {
	ID                    uint      `gorm:"primaryKey"`
	Name                  string    `gorm:"size:100;uniqueIndex;not null"`
	RegionalCoordinatorID *uint     `gorm:"index"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`

	// Relations
	RegionalCoordinator *User  `gorm:"foreignKey:RegionalCoordinatorID"`
	ZonalCoordinators   []User `gorm:"many2many:region_zonal_coordinators"`
	EvngCoordinators    []User `gorm:"many2many:region_evng_coordinators"`

	// TotalMembers is not stored; repositories fill it from the users table.
	TotalMembers int64 `gorm:"-"`
}

func (Region) TableName() string {
	return "regions"
}

// Zone represents zones table. Names are unique within a region.
type Zone struct {
	ID                    uint      `gorm:"primaryKey"`
	Name                  string    `gorm:"size:100;not null;uniqueIndex:idx_zone_region_name"`
	RegionID              uint      `gorm:"not null;uniqueIndex:idx_zone_region_name"`
	RegionalCoordinatorID *uint     `gorm:"index"`
	ZonalCoordinatorID    *uint     `gorm:"index"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`

	// Relations
	Region              *Region `gorm:"foreignKey:RegionID"`
	RegionalCoordinator *User   `gorm:"foreignKey:RegionalCoordinatorID"`
	ZonalCoordinator    *User   `gorm:"foreignKey:ZonalCoordinatorID"`
	EvngCoordinators    []User  `gorm:"many2many:zone_evng_coordinators"`
}

func (Zone) TableName() string {
	return "zones"
}

// Subzone represents subzones table
type Subzone struct {
	ID                 uint      `gorm:"primaryKey"`
	Name               string    `gorm:"size:100;uniqueIndex;not null"`
	ZoneID             *uint     `gorm:"index"`
	ZonalCoordinatorID uint      `gorm:"not null;index"`
	EvngCoordinatorID  uint      `gorm:"not null;index"`
	TotalMembers       int       `gorm:"not null;default:1"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`

	// Relations
	Zone             *Zone        `gorm:"foreignKey:ZoneID"`
	ZonalCoordinator *User        `gorm:"foreignKey:ZonalCoordinatorID"`
	EvngCoordinator  *User        `gorm:"foreignKey:EvngCoordinatorID"`
	AllMembers       []User       `gorm:"many2many:subzone_members"`
	Fellowships      []Fellowship `gorm:"foreignKey:SubzoneID"`
}

func (Subzone) TableName() string {
	return "subzones"
}

// Fellowship represents fellowships table
type Fellowship struct {
	ID                 uint      `gorm:"primaryKey"`
	Name               string    `gorm:"size:100;not null;index"`
	ZoneID             *uint     `gorm:"index"`
	SubzoneID          *uint     `gorm:"index"`
	CoordinatorID      uint      `gorm:"not null;index"`
	EvngCoordinatorID  *uint     `gorm:"index"`
	ZonalCoordinatorID *uint     `gorm:"index"`
	TotalMembers       int       `gorm:"not null;default:0"`
	Address            string    `gorm:"size:255"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`

	// Relations
	Zone             *Zone    `gorm:"foreignKey:ZoneID"`
	Subzone          *Subzone `gorm:"foreignKey:SubzoneID"`
	Coordinator      *User    `gorm:"foreignKey:CoordinatorID"`
	EvngCoordinator  *User    `gorm:"foreignKey:EvngCoordinatorID"`
	ZonalCoordinator *User    `gorm:"foreignKey:ZonalCoordinatorID"`
}

func (Fellowship) TableName() string {
	return "fellowships"
}

// User represents users table
type User struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:100;not null"`
	Email        string     `gorm:"size:150;uniqueIndex;not null"`
	Password     string     `gorm:"size:255;not null"`
	Role         string     `gorm:"size:20;not null;default:'user';index"`
	ZionID       int64      `gorm:"uniqueIndex;not null"`
	FellowshipID *uint      `gorm:"index"`
	SubzoneID    *uint      `gorm:"index"`
	ZoneID       *uint      `gorm:"index"`
	RegionID     *uint      `gorm:"index"`
	Phone        string     `gorm:"size:20;index"`
	Address      string     `gorm:"size:255"`
	Gender       string     `gorm:"size:10"`
	DOB          *time.Time `gorm:"column:dob"`
	IsVerified   bool       `gorm:"not null;default:false"`
	IsBlocked    bool       `gorm:"not null;default:false"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`

	// Relations
	Fellowship *Fellowship `gorm:"foreignKey:FellowshipID"`
	Subzone    *Subzone    `gorm:"foreignKey:SubzoneID"`
	Zone       *Zone       `gorm:"foreignKey:ZoneID"`
	Region     *Region     `gorm:"foreignKey:RegionID"`
}

func (User) TableName() string {
	return "users"
}

// ============================================================
// Reports
// ============================================================

// Report represents reports table. Status, FollowUpStatus and
// AppointmentStatus are independent of each other.
type Report struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"not null;index"`
	Fellowship   string    `gorm:"size:100;index"`
	TypeOfReport string    `gorm:"size:20;not null"`
	Date         time.Time `gorm:"not null;index"`
	HearerName   string    `gorm:"size:100;not null"`
	NoOfHearers  int       `gorm:"not null;default:1"`
	Location     string    `gorm:"size:200"`
	MobileNumber string    `gorm:"size:20"`
	Status       string    `gorm:"size:10;not null;index"`
	Remarks      string    `gorm:"type:text"`

	FollowUpStatus   string     `gorm:"size:20;not null;index"`
	NextFollowUpDate *time.Time `gorm:"index"`
	FollowUpRemarks  string     `gorm:"type:text"`

	AppointmentDate     *time.Time
	AppointmentTime     *string `gorm:"size:10"`
	AppointmentLocation *string `gorm:"size:200"`
	AppointmentStatus   string  `gorm:"size:20;not null;index"`
	EvangelistAssigned  string  `gorm:"size:100"`
	AppointmentRemarks  string  `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Relations
	User *User `gorm:"foreignKey:UserID"`
}

func (Report) TableName() string {
	return "reports"
}

// ============================================================
// Sessions & one-time tokens
// ============================================================

// Session represents sessions table: one row per login, holding the
// current refresh token and CSRF token hashes.
type Session struct {
	ID         string     `gorm:"primaryKey;size:36"`
	UserID     uint       `gorm:"index;not null"`
	TokenHash  string     `gorm:"size:64;not null;index"`
	CSRFHash   string     `gorm:"column:csrf_hash;size:64;not null"`
	UserAgent  string     `gorm:"size:255"`
	IP         string     `gorm:"size:64"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	LastUsedAt time.Time  `gorm:"not null"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	RevokedAt  *time.Time `gorm:"index"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Token purposes
const (
	TokenPurposeVerify = "verify"
	TokenPurposeReset  = "reset"
)

// UserToken represents user_tokens table: hashed single-use email tokens.
type UserToken struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"index;not null"`
	Purpose   string     `gorm:"size:10;not null;index"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	UsedAt    *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}

func (t *UserToken) IsUsable() bool {
	return t.UsedAt == nil && time.Now().Before(t.ExpiresAt)
}

// AutoMigrate runs migrations for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Region{},
		&Zone{},
		&Subzone{},
		&Fellowship{},
		&User{},
		&Report{},
		&Session{},
		&UserToken{},
	)
}
