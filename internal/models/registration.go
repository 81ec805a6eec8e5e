package models

import "time"

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodOnline
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentHold    PaymentStatus = "hold"
	PaymentCancel  PaymentStatus = "cancel"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentHold, PaymentCancel:
		return true
	}
	return false
}

type RegStatus string

const (
	RegPending        RegStatus = "pending"
	RegActive         RegStatus = "active"
	RegCancel         RegStatus = "cancel"
	RegCourseComplete RegStatus = "course_complete"
)

func (s RegStatus) Valid() bool {
	switch s {
	case RegPending, RegActive, RegCancel, RegCourseComplete:
		return true
	}
	return false
}

type Registration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderCode string    `gorm:"size:8;not null;uniqueIndex" json:"order_code"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ParentFirstName string `gorm:"size:100" json:"parent_first_name"`
	ParentLastName  string `gorm:"size:100" json:"parent_last_name"`
	ParentEmail     string `gorm:"size:190" json:"parent_email"`
	ParentPhone     string `gorm:"size:40" json:"parent_phone"`

	StudentFirstName string `gorm:"size:100" json:"student_first_name"`
	StudentLastName  string `gorm:"size:100" json:"student_last_name"`
	Location         string `gorm:"size:100" json:"location"`
	CurrentGrades    string `gorm:"size:50" json:"current_grades,omitempty"`
	YearGroup        string `gorm:"size:20" json:"year_group"`

	// Snapshot of prices at submission time; never recomputed when class
	// prices change later.
	MonthlyTotal float64 `gorm:"type:decimal(10,2);default:0" json:"monthly_total"`

	PaymentMethod   PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentProvider string        `gorm:"size:20" json:"payment_provider,omitempty"`
	PaymentTrx      string        `gorm:"size:120" json:"payment_trx,omitempty"`
	PaymentAmount   float64       `gorm:"type:decimal(10,2);default:0" json:"payment_amount"`

	RegStatus     RegStatus `gorm:"type:varchar(30);not null;default:'pending'" json:"reg_status"`
	AcceptedTerms bool      `gorm:"default:false" json:"accepted_terms"`
	SignatureURL  string    `gorm:"type:text" json:"signature_url,omitempty"`

	Classes []RegistrationClass `gorm:"foreignKey:RegistrationID;constraint:OnDelete:CASCADE" json:"classes,omitempty"`
}

// RegistrationClass is one selected class, snapshotted at submission time.
// Kept in its own table so seat counts are a join, not a blob scan.
type RegistrationClass struct {
	ID             uint    `gorm:"primaryKey" json:"-"`
	RegistrationID uint    `gorm:"not null;uniqueIndex:idx_reg_class" json:"-"`
	ClassID        string  `gorm:"column:class_id;size:50;not null;uniqueIndex:idx_reg_class;index" json:"id"`
	Title          string  `gorm:"size:100;not null" json:"title"`
	Price          float64 `gorm:"type:decimal(10,2);default:0" json:"price"`
}

func (RegistrationClass) TableName() string { return "registration_classes" }
