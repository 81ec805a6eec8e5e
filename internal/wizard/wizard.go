// Package wizard implements the three-step registration flow as a pure
// state machine: Details → Class Selection → Payment & Signature. It holds
// all entered state so that moving back a step never loses data, and it
// gates every forward transition on the same validation rules the server
// applies at submit time.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/geniusacademy/registration-service/internal/service"
)

type Step int

const (
	StepDetails Step = iota + 1
	StepClasses
	StepPayment
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrClassFull      = errors.New("class is full")
)

// ClassChoice is one class as offered to the form, including live
// availability at render time.
type ClassChoice struct {
	ID        string
	Title     string
	Price     float64
	Available bool
}

// Details are the step-one contact and student fields.
type Details struct {
	ParentFirstName  string
	ParentLastName   string
	ParentEmail      string
	ParentPhone      string
	StudentFirstName string
	StudentLastName  string
	Location         string
	CurrentGrades    string // optional
	YearGroup        string
}

func (d Details) requiredFields() []struct{ label, value string } {
	return []struct{ label, value string }{
		{"parent first name", d.ParentFirstName},
		{"parent last name", d.ParentLastName},
		{"parent email", d.ParentEmail},
		{"parent phone", d.ParentPhone},
		{"student first name", d.StudentFirstName},
		{"student last name", d.StudentLastName},
		{"location", d.Location},
		{"year group", d.YearGroup},
	}
}

type Wizard struct {
	step          Step
	details       Details
	selection     []ClassChoice // insertion-ordered set
	paymentMethod string
	signatureData string
	termsAccepted bool
	inFlight      bool
}

func New() *Wizard {
	return &Wizard{step: StepDetails, paymentMethod: "online"}
}

func (w *Wizard) Step() Step       { return w.step }
func (w *Wizard) Details() Details { return w.details }

// SetDetails replaces the step-one fields. Allowed from any step: edits made
// after navigating back are kept.
func (w *Wizard) SetDetails(d Details) { w.details = d }

func (w *Wizard) SetPaymentMethod(method string) { w.paymentMethod = method }
func (w *Wizard) PaymentMethod() string          { return w.paymentMethod }

// Next advances one step if the current step's gate passes.
func (w *Wizard) Next() error {
	switch w.step {
	case StepDetails:
		for _, f := range w.details.requiredFields() {
			if f.value == "" {
				return fmt.Errorf("%s is required", f.label)
			}
		}
		w.step = StepClasses
	case StepClasses:
		if err := service.ValidateClassCount(w.details.YearGroup, len(w.selection)); err != nil {
			return err
		}
		w.step = StepPayment
	case StepPayment:
		return errors.New("already at the final step")
	}
	return nil
}

// Back moves one step towards the start. All entered state is preserved.
func (w *Wizard) Back() {
	if w.step > StepDetails {
		w.step--
	}
}

// Toggle adds a class to the selection, or removes it if already selected.
// Adding beyond the year-group maximum is rejected with an error the UI must
// surface, not silently ignored.
func (w *Wizard) Toggle(choice ClassChoice) error {
	for i, c := range w.selection {
		if c.ID == choice.ID {
			w.selection = append(w.selection[:i], w.selection[i+1:]...)
			return nil
		}
	}

	if !choice.Available {
		return ErrClassFull
	}
	if max := service.MaxClassesFor(w.details.YearGroup); len(w.selection) >= max {
		return fmt.Errorf("you can select at most %d classes for %s", max, w.details.YearGroup)
	}

	w.selection = append(w.selection, choice)
	return nil
}

func (w *Wizard) IsSelected(classID string) bool {
	for _, c := range w.selection {
		if c.ID == classID {
			return true
		}
	}
	return false
}

func (w *Wizard) Selected() []ClassChoice {
	out := make([]ClassChoice, len(w.selection))
	copy(out, w.selection)
	return out
}

func (w *Wizard) MonthlyTotal() float64 {
	var total float64
	for _, c := range w.selection {
		total += c.Price
	}
	return math.Round(total*100) / 100
}

func (w *Wizard) SetSignature(dataURI string) { w.signatureData = dataURI }
func (w *Wizard) ClearSignature()             { w.signatureData = "" }
func (w *Wizard) HasSignature() bool          { return w.signatureData != "" }
func (w *Wizard) AcceptTerms(ok bool)         { w.termsAccepted = ok }
func (w *Wizard) TermsAccepted() bool         { return w.termsAccepted }

// CanSubmit re-validates everything the final gate needs: the class-count
// rule is checked again here, not just carried over from step two.
func (w *Wizard) CanSubmit() error {
	if err := service.ValidateClassCount(w.details.YearGroup, len(w.selection)); err != nil {
		return err
	}
	if w.signatureData == "" {
		return errors.New("please provide your signature")
	}
	if !w.termsAccepted {
		return errors.New("please accept the terms and conditions")
	}
	return nil
}

// BeginSubmit validates the final gate, locks the wizard against duplicate
// submissions and returns the form-encoded payload for the single
// submission call.
func (w *Wizard) BeginSubmit(nonce string) (url.Values, error) {
	if w.inFlight {
		return nil, ErrSubmitInFlight
	}
	if err := w.CanSubmit(); err != nil {
		return nil, err
	}

	type selection struct {
		ID    string  `json:"id"`
		Title string  `json:"title"`
		Price float64 `json:"price"`
	}
	classes := make([]selection, len(w.selection))
	for i, c := range w.selection {
		classes[i] = selection{ID: c.ID, Title: c.Title, Price: c.Price}
	}
	classesJSON, err := json.Marshal(classes)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("parent_first_name", w.details.ParentFirstName)
	form.Set("parent_last_name", w.details.ParentLastName)
	form.Set("parent_email", w.details.ParentEmail)
	form.Set("parent_phone", w.details.ParentPhone)
	form.Set("student_first_name", w.details.StudentFirstName)
	form.Set("student_last_name", w.details.StudentLastName)
	form.Set("location", w.details.Location)
	form.Set("current_grades", w.details.CurrentGrades)
	form.Set("year_group", w.details.YearGroup)
	form.Set("classes", string(classesJSON))
	form.Set("monthly_total", strconv.FormatFloat(w.MonthlyTotal(), 'f', 2, 64))
	form.Set("payment_method", w.paymentMethod)
	form.Set("accepted_terms", "1")
	form.Set("signature_data", w.signatureData)
	form.Set("_ajax_nonce", nonce)

	w.inFlight = true
	return form, nil
}

// FinishSubmit unlocks the wizard after the network call returns. After a
// failure the user may correct input and submit again.
func (w *Wizard) FinishSubmit() { w.inFlight = false }

func (w *Wizard) InFlight() bool { return w.inFlight }
