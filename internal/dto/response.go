package dto

import (
	"time"

	"github.com/geniusacademy/registration-service/internal/models"
)

// SubmitResult is the `data` half of a successful submission envelope.
// The commerce fields are optional: order setup can fail without failing
// the registration, in which case WCError explains why.
type SubmitResult struct {
	ID          uint   `json:"id"`
	OrderCode   string `json:"order_code"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	WCOrderID   string `json:"wc_order_id,omitempty"`
	WCError     string `json:"wc_error,omitempty"`
}

type SubmitEnvelope struct {
	Success bool          `json:"success"`
	Data    *SubmitResult `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type ClassStatusResponse struct {
	ClassID        string                `json:"class_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description,omitempty"`
	Price          float64               `json:"price"`
	MaxSeats       int                   `json:"max_seats"`
	Registered     int64                 `json:"registered"`
	Available      bool                  `json:"available"`
	StatusOverride models.StatusOverride `json:"status_override"`
}

type RegistrationResponse struct {
	ID               uint                 `json:"id"`
	OrderCode        string               `json:"order_code"`
	CreatedAt        time.Time            `json:"created_at"`
	ParentFirstName  string               `json:"parent_first_name"`
	ParentLastName   string               `json:"parent_last_name"`
	ParentEmail      string               `json:"parent_email"`
	ParentPhone      string               `json:"parent_phone"`
	StudentFirstName string               `json:"student_first_name"`
	StudentLastName  string               `json:"student_last_name"`
	Location         string               `json:"location"`
	CurrentGrades    string               `json:"current_grades,omitempty"`
	YearGroup        string               `json:"year_group"`
	Classes          []ClassSelection     `json:"classes"`
	MonthlyTotal     float64              `json:"monthly_total"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	PaymentProvider  string               `json:"payment_provider,omitempty"`
	PaymentTrx       string               `json:"payment_trx,omitempty"`
	PaymentAmount    float64              `json:"payment_amount"`
	RegStatus        models.RegStatus     `json:"reg_status"`
	AcceptedTerms    bool                 `json:"accepted_terms"`
	SignatureURL     string               `json:"signature_url,omitempty"`
	DeleteToken      string               `json:"delete_token,omitempty"`
}

type RegistrationListResponse struct {
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
	Items   []RegistrationResponse `json:"items"`
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

func ToRegistrationResponse(r *models.Registration) RegistrationResponse {
	classes := make([]ClassSelection, len(r.Classes))
	for i, c := range r.Classes {
		classes[i] = ClassSelection{ID: c.ClassID, Title: c.Title, Price: c.Price}
	}
	return RegistrationResponse{
		ID:               r.ID,
		OrderCode:        r.OrderCode,
		CreatedAt:        r.CreatedAt,
		ParentFirstName:  r.ParentFirstName,
		ParentLastName:   r.ParentLastName,
		ParentEmail:      r.ParentEmail,
		ParentPhone:      r.ParentPhone,
		StudentFirstName: r.StudentFirstName,
		StudentLastName:  r.StudentLastName,
		Location:         r.Location,
		CurrentGrades:    r.CurrentGrades,
		YearGroup:        r.YearGroup,
		Classes:          classes,
		MonthlyTotal:     r.MonthlyTotal,
		PaymentMethod:    r.PaymentMethod,
		PaymentStatus:    r.PaymentStatus,
		PaymentProvider:  r.PaymentProvider,
		PaymentTrx:       r.PaymentTrx,
		PaymentAmount:    r.PaymentAmount,
		RegStatus:        r.RegStatus,
		AcceptedTerms:    r.AcceptedTerms,
		SignatureURL:     r.SignatureURL,
	}
}
