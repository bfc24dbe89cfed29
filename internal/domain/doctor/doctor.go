package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	DocumentNumber string `gorm:"column:document_number;type:varchar(50);uniqueIndex;not null"`
	FirstName      string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName       string `gorm:"column:last_name;type:varchar(100);not null"`
	Specialty      string `gorm:"column:specialty;type:varchar(100);not null;index"`
	Email          string `gorm:"column:email;type:varchar(255)"`
	Phone          string `gorm:"column:phone;type:varchar(20)"`
	LicenseNumber  string `gorm:"column:license_number;type:varchar(50)"`

	// Sede is the clinic location the doctor attends at. Used only for
	// directory grouping; the slot grid is the same everywhere.
	Sede string `gorm:"column:sede;type:varchar(100);index"`

	IsActive bool `gorm:"column:is_active;default:true;index"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

type CreateDoctorCommand struct {
	DocumentNumber string
	FirstName      string
	LastName       string
	Specialty      string
	Email          string
	Phone          string
	LicenseNumber  string
	Sede           string
	Password       string
}

type ListDoctorsQuery struct {
	Sede      string
	Specialty string
}
