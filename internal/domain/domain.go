package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrStoreUnavailable wraps infrastructure failures (database or cache
// unreachable) so the HTTP layer can answer 503 instead of a generic 500.
var ErrStoreUnavailable = errors.New("persistent store unavailable")

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this document number or email already exists")
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	// DocumentNumber is the national identity document used to log in,
	// for patients and doctors alike.
	DocumentNumber string `gorm:"column:document_number;type:varchar(50);uniqueIndex;not null"`
	Email          string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash   string `gorm:"column:password_hash;type:varchar(255);not null"`
	Role           Role   `gorm:"column:role;type:varchar(30);not null;index"`

	// For doctor role, links to the doctor record
	DoctorID *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`
	// For patient role, links to the patient record
	PatientID *uuid.UUID `gorm:"column:patient_id;type:uuid;index"`

	IsActive         bool       `gorm:"column:is_active;default:true;index"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "auth.users"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(30);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID    uuid.UUID  `json:"sub"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}
