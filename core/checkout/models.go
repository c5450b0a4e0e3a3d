package checkout

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Currency is the only unit payments are accepted in.
const Currency = "USD"

// ConfirmationRoute is the frontend route a completed checkout redirects to.
const ConfirmationRoute = "/payment-success"

const (
	paymentStatusPending       = "PENDING"
	enrollmentStatusInProgress = "IN_PROGRESS"
)

// PaymentMethod is the platform-recognized payment method enum.
type PaymentMethod string

const (
	MethodZaad           PaymentMethod = "ZAAD"
	MethodEdahab         PaymentMethod = "EDAHAB"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	MethodUnknown        PaymentMethod = "UNKNOWN"
)

// methodLabels maps the labels displayed by the frontend to the enum.
var methodLabels = map[string]PaymentMethod{
	"ZAAD Service":     MethodZaad,
	"EDAHAB Service":   MethodEdahab,
	"Cash on Delivery": MethodCashOnDelivery,
}

// ParseMethod maps a frontend label to a PaymentMethod,
// defaulting to MethodUnknown for unrecognized labels.
func ParseMethod(label string) PaymentMethod {
	if m, ok := methodLabels[core.CleanString(label)]; ok {
		return m
	}
	return MethodUnknown
}

type (
	// PaymentRequest is the payload posted to the platform's payment endpoint.
	// It is constructed fresh per checkout attempt and never persisted locally.
	PaymentRequest struct {
		UserID        string        `json:"userId"`
		CourseID      int           `json:"courseId"`
		PhoneNumber   string        `json:"phoneNumber"`
		Amount        float64       `json:"amount"`
		Currency      string        `json:"currency"`
		Status        string        `json:"status"`
		PaymentMethod PaymentMethod `json:"payment_method"`
		IsEnrolled    bool          `json:"isEnrolled"`
	}

	// Payment is the server-assigned payment record. It only exists
	// transiently between the two remote calls of an attempt.
	Payment struct {
		ID string `json:"id"`
		PaymentRequest
	}

	// EnrollmentRequest is the payload posted to the platform's enrollment
	// endpoint. PaymentID is a strict dependency on Payment.ID: it cannot be
	// built before the payment of the same attempt succeeds.
	EnrollmentRequest struct {
		UserID     string `json:"userId"`
		CourseID   int    `json:"courseId"`
		PaymentID  string `json:"paymentId"`
		IsEnrolled bool   `json:"isEnrolled"`
		Status     string `json:"status"`
	}

	// Enrollment is the server-assigned enrollment record.
	Enrollment struct {
		ID string `json:"id"`
		EnrollmentRequest
	}
)

// Submission is the payment form input starting a checkout attempt.
type Submission struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	MethodLabel string `json:"payment_method" validate:"required"`
}

func (s *Submission) Validate(validate *validator.Validate) error {
	s.PhoneNumber = core.CleanString(s.PhoneNumber)
	s.MethodLabel = core.CleanString(s.MethodLabel)
	return validate.Struct(s)
}

// Session carries the acting user's identity and bearer token through the
// checkout flow; remote calls never read ambient global state.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// Result is the outcome of a completed checkout attempt.
type Result struct {
	State      State      `json:"state"`
	Payment    Payment    `json:"payment"`
	Enrollment Enrollment `json:"enrollment"`
	Redirect   string     `json:"redirect"`
}
