package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentCC DocumentType = "CC" // citizen ID card
	DocumentTI DocumentType = "TI" // minor ID card
	DocumentCE DocumentType = "CE" // foreigner ID card
	DocumentPA DocumentType = "PA" // passport
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentCC, DocumentTI, DocumentCE, DocumentPA:
		return true
	}
	return false
}

// Status represents the lifecycle state of a patient record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"` // Soft Delete

	FirstName      string       `gorm:"column:first_name;type:varchar(100);not null"`
	LastName       string       `gorm:"column:last_name;type:varchar(100);not null"`
	DocumentType   DocumentType `gorm:"column:document_type;type:varchar(5);not null"`
	DocumentNumber string       `gorm:"column:document_number;type:varchar(50);uniqueIndex;not null"`
	DateOfBirth    *time.Time   `gorm:"column:date_of_birth"`

	Phone   string `gorm:"column:phone;type:varchar(20)"`
	Email   string `gorm:"column:email;type:varchar(255)"`
	Address string `gorm:"column:address;type:text"`
	City    string `gorm:"column:city;type:varchar(100)"`

	// EPS is the patient's health insurance provider.
	EPS string `gorm:"column:eps;type:varchar(100)"`

	Status Status `gorm:"column:status;type:varchar(20);default:'active';index"`
	Notes  string `gorm:"column:notes;type:text"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) IsActive() bool {
	return p.Status == StatusActive && p.DeletedAt == nil
}

type CreatePatientCommand struct {
	FirstName      string
	LastName       string
	DocumentType   DocumentType
	DocumentNumber string
	DateOfBirth    *time.Time
	Phone          string
	Email          string
	Address        string
	City           string
	EPS            string
	Notes          string
}

type UpdatePatientCommand struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Address   *string
	City      *string
	EPS       *string
	Notes     *string
}
