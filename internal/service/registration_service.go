package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/models"
	"github.com/geniusacademy/registration-service/internal/repository"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUnknownOrderStatus   = errors.New("unknown order status")
)

const PaymentProviderWooCommerce = "woocommerce"

// insertMaxRetries bounds how often a submission retries after losing an
// order-code race to a concurrent insert.
const insertMaxRetries = 5

// PaymentGateway creates orders in the external commerce system.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, reg *models.Registration) (orderID, checkoutURL string, err error)
}

// Mailer sends the staff notification for a new registration.
type Mailer interface {
	SendNewRegistration(reg *models.Registration) error
}

// SignatureStore persists a signature data URI and returns its public URL.
type SignatureStore interface {
	Save(dataURI string) (string, error)
}

type RegistrationService interface {
	Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.SubmitResult, error)
	Get(ctx context.Context, id uint) (*models.Registration, error)
	List(ctx context.Context, filter repository.RegistrationFilter) ([]models.Registration, int64, error)
	UpdateSingle(ctx context.Context, id uint, req dto.UpdateRegistrationRequest) (*models.Registration, error)
	Delete(ctx context.Context, id uint) error
	ApplyOrderStatus(ctx context.Context, registrationID uint, orderID, status string) error
}

type registrationService struct {
	regRepo   repository.RegistrationRepository
	inventory InventoryService
	codes     *OrderCodeGenerator
	signature SignatureStore
	gateway   PaymentGateway
	mailer    Mailer
	validate  *validator.Validate
}

func NewRegistrationService(
	regRepo repository.RegistrationRepository,
	inventory InventoryService,
	codes *OrderCodeGenerator,
	signature SignatureStore,
	gateway PaymentGateway,
	mailer Mailer,
) RegistrationService {
	return &registrationService{
		regRepo:   regRepo,
		inventory: inventory,
		codes:     codes,
		signature: signature,
		gateway:   gateway,
		mailer:    mailer,
		validate:  validator.New(),
	}
}

// RequiresExactlyTwo reports whether a year group falls under the
// two-classes rule (Years 10 and 11).
func RequiresExactlyTwo(yearGroup string) bool {
	y := strings.ToLower(strings.TrimSpace(yearGroup))
	return y == "year 10" || y == "year 11"
}

// MaxClassesFor returns the selection limit for a year group. Years 10/11
// must pick exactly two; everyone else picks between one and four.
func MaxClassesFor(yearGroup string) int {
	if RequiresExactlyTwo(yearGroup) {
		return 2
	}
	return 4
}

// ValidateClassCount enforces the year-group selection rule.
func ValidateClassCount(yearGroup string, count int) error {
	if RequiresExactlyTwo(yearGroup) {
		if count != 2 {
			return Validationf("Year 10 and Year 11 students must select exactly 2 classes. You selected %d.", count)
		}
		return nil
	}
	if count < 1 {
		return Validationf("Please select at least 1 class.")
	}
	if count > 4 {
		return Validationf("You can select a maximum of 4 classes. You selected %d.", count)
	}
	return nil
}

func (s *registrationService) Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.SubmitResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationMessage(err)
	}
	if err := ValidateClassCount(req.YearGroup, len(req.Classes)); err != nil {
		return nil, err
	}

	// The selection is a set: duplicates mean a broken client.
	seen := make(map[string]bool, len(req.Classes))
	for _, c := range req.Classes {
		if seen[c.ID] {
			return nil, Validationf("Class %q is selected more than once.", c.Title)
		}
		seen[c.ID] = true
	}

	// Advisory availability check. Two concurrent submissions can both pass;
	// the seat limit is eventually consistent, not a hard guarantee.
	for _, c := range req.Classes {
		available, err := s.inventory.IsAvailable(ctx, c.ID)
		if err != nil {
			if errors.Is(err, ErrClassNotFound) {
				return nil, Validationf("Class %q no longer exists.", c.Title)
			}
			return nil, err
		}
		if !available {
			return nil, Validationf("Class %q is full. Please choose another class.", c.Title)
		}
	}

	signatureURL, err := s.signature.Save(req.SignatureData)
	if err != nil {
		return nil, Validationf("Signature could not be processed. Please sign again.")
	}

	reg, err := s.insertWithUniqueCode(ctx, req, signatureURL)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendNewRegistration(reg); err != nil {
		log.Printf("[Registration] notification email for #%s failed: %v", reg.OrderCode, err)
	}

	result := &dto.SubmitResult{ID: reg.ID, OrderCode: reg.OrderCode}

	// Payment setup is a separate, independently-failable step. The
	// registration is already durably saved; a gateway failure is surfaced
	// as a warning, never a rollback.
	if reg.PaymentMethod == models.MethodOnline && s.gateway != nil {
		orderID, checkoutURL, err := s.gateway.CreateOrder(ctx, reg)
		if err != nil {
			log.Printf("[Registration] commerce order for #%s failed: %v", reg.OrderCode, err)
			result.WCError = err.Error()
			return result, nil
		}
		result.WCOrderID = orderID
		result.CheckoutURL = checkoutURL

		if _, err := s.regRepo.UpdateFields(ctx, reg.ID, map[string]interface{}{
			"payment_provider": PaymentProviderWooCommerce,
			"payment_trx":      orderID,
		}); err != nil {
			log.Printf("[Registration] failed to record order ref for #%s: %v", reg.OrderCode, err)
		}
	}

	return result, nil
}

// insertWithUniqueCode generates an order code checked against the live
// table, then inserts. Losing the race to a concurrent submission surfaces
// as a duplicate-key error, which is handled by drawing a fresh code and
// retrying, not by failing the submission.
func (s *registrationService) insertWithUniqueCode(ctx context.Context, req dto.SubmitRegistrationRequest, signatureURL string) (*models.Registration, error) {
	var total float64
	selections := make([]models.RegistrationClass, len(req.Classes))
	for i, c := range req.Classes {
		selections[i] = models.RegistrationClass{ClassID: c.ID, Title: c.Title, Price: c.Price}
		total += c.Price
	}
	total = math.Round(total*100) / 100

	for attempt := 0; attempt < insertMaxRetries; attempt++ {
		code, err := s.codes.Generate(ctx)
		if err != nil {
			return nil, err
		}

		reg := &models.Registration{
			OrderCode:        code,
			ParentFirstName:  req.ParentFirstName,
			ParentLastName:   req.ParentLastName,
			ParentEmail:      req.ParentEmail,
			ParentPhone:      req.ParentPhone,
			StudentFirstName: req.StudentFirstName,
			StudentLastName:  req.StudentLastName,
			Location:         req.Location,
			CurrentGrades:    req.CurrentGrades,
			YearGroup:        req.YearGroup,
			MonthlyTotal:     total,
			PaymentMethod:    models.PaymentMethod(req.PaymentMethod),
			PaymentStatus:    models.PaymentPending,
			PaymentAmount:    total,
			RegStatus:        models.RegPending,
			AcceptedTerms:    req.AcceptedTerms,
			SignatureURL:     signatureURL,
			Classes:          selections,
		}

		err = s.regRepo.Create(ctx, nil, reg)
		if err == nil {
			return reg, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("[Registration] order code %s raced, retrying", code)
			continue
		}
		return nil, err
	}
	return nil, ErrOrderCodeExhausted
}

func (s *registrationService) Get(ctx context.Context, id uint) (*models.Registration, error) {
	reg, err := s.regRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) List(ctx context.Context, filter repository.RegistrationFilter) ([]models.Registration, int64, error) {
	return s.regRepo.List(ctx, filter)
}

// UpdateSingle is the admin's direct overwrite: enum membership is the only
// business rule applied.
func (s *registrationService) UpdateSingle(ctx context.Context, id uint, req dto.UpdateRegistrationRequest) (*models.Registration, error) {
	payment := models.PaymentStatus(req.PaymentStatus)
	if !payment.Valid() {
		return nil, Validationf("payment status must be one of pending, paid, hold, cancel")
	}
	reg := models.RegStatus(req.RegStatus)
	if !reg.Valid() {
		return nil, Validationf("registration status must be one of pending, active, cancel, course_complete")
	}
	if req.PaymentAmount < 0 {
		return nil, Validationf("payment amount cannot be negative")
	}

	affected, err := s.regRepo.UpdateFields(ctx, id, map[string]interface{}{
		"payment_status": payment,
		"payment_amount": req.PaymentAmount,
		"reg_status":     reg,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrRegistrationNotFound
	}
	return s.Get(ctx, id)
}

func (s *registrationService) Delete(ctx context.Context, id uint) error {
	affected, err := s.regRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// ApplyOrderStatus syncs a commerce order status change onto the
// registration it back-references.
func (s *registrationService) ApplyOrderStatus(ctx context.Context, registrationID uint, orderID, status string) error {
	fields := map[string]interface{}{
		"payment_provider": PaymentProviderWooCommerce,
		"payment_trx":      orderID,
	}

	switch status {
	case "completed", "processing":
		fields["payment_status"] = models.PaymentPaid
		fields["reg_status"] = models.RegActive
	case "on-hold":
		fields["payment_status"] = models.PaymentHold
	case "cancelled", "refunded":
		fields["payment_status"] = models.PaymentCancel
		fields["reg_status"] = models.RegCancel
	default:
		return ErrUnknownOrderStatus
	}

	affected, err := s.regRepo.UpdateFields(ctx, registrationID, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// validationMessage turns the first validator failure into an actionable
// message instead of the library's struct-path wording.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Validationf("Required fields missing or invalid data format.")
	}
	fe := verrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required", "min":
		return Validationf("%s is required.", field)
	case "email":
		return Validationf("%s must be a valid email address.", field)
	case "oneof":
		return Validationf("%s must be one of: %s.", field, fe.Param())
	default:
		return Validationf("%s is invalid.", field)
	}
}

func fieldLabel(structField string) string {
	labels := map[string]string{
		"ParentFirstName":  "Parent first name",
		"ParentLastName":   "Parent last name",
		"ParentEmail":      "Parent email",
		"ParentPhone":      "Parent phone",
		"StudentFirstName": "Student first name",
		"StudentLastName":  "Student last name",
		"Location":         "Location",
		"YearGroup":        "Year group",
		"Classes":          "Class selection",
		"PaymentMethod":    "Payment method",
	}
	if l, ok := labels[structField]; ok {
		return l
	}
	return structField
}
