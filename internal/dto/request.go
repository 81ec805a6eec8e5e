package dto

// ClassSelection is one selected class as submitted by the form. The form
// posts these as a JSON array in the `classes` field.
type ClassSelection struct {
	ID    string  `json:"id" validate:"required"`
	Title string  `json:"title" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

// SubmitRegistrationRequest carries the form-encoded submission fields.
// `classes` and `monthly_total` arrive as strings and are decoded by the
// handler before validation.
type SubmitRegistrationRequest struct {
	ParentFirstName string `form:"parent_first_name" validate:"required"`
	ParentLastName  string `form:"parent_last_name" validate:"required"`
	ParentEmail     string `form:"parent_email" validate:"required,email"`
	ParentPhone     string `form:"parent_phone" validate:"required"`

	StudentFirstName string `form:"student_first_name" validate:"required"`
	StudentLastName  string `form:"student_last_name" validate:"required"`
	Location         string `form:"location" validate:"required"`
	CurrentGrades    string `form:"current_grades"`
	YearGroup        string `form:"year_group" validate:"required"`

	Classes       []ClassSelection `form:"-" validate:"required,min=1,dive"`
	PaymentMethod string           `form:"payment_method" validate:"required,oneof=cash online"`
	AcceptedTerms bool             `form:"-"`

	// Base64 data URI from the signature canvas, or empty.
	SignatureData string `form:"signature_data"`
}

type UpdateRegistrationRequest struct {
	PaymentStatus string  `json:"payment_status"`
	PaymentAmount float64 `json:"payment_amount"`
	RegStatus     string  `json:"reg_status"`
}

type UpdateClassRequest struct {
	Title          *string  `json:"title,omitempty"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	MaxSeats       *int     `json:"max_seats,omitempty" validate:"omitempty,gt=0"`
	Description    *string  `json:"description,omitempty"`
	StatusOverride *string  `json:"status_override,omitempty"`
}

// OrderStatusMessage is the commerce system's order status-change
// notification, consumed from the orders exchange. RegistrationID is the
// metadata back-reference set at order creation.
type OrderStatusMessage struct {
	OrderID        string `json:"order_id"`
	RegistrationID uint   `json:"registration_id"`
	Status         string `json:"status"`
}
