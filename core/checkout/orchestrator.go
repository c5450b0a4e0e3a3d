package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cart"
)

// State is the orchestrator's position in a checkout attempt.
type State string

const (
	StateIdle               State = "IDLE"
	StateCreatingPayment    State = "CREATING_PAYMENT"
	StateCreatingEnrollment State = "CREATING_ENROLLMENT"
	StateCompleted          State = "COMPLETED"
	StateFailed             State = "FAILED"
)

func (s State) IsTerminal() bool { return s == StateCompleted || s == StateFailed }

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to check out")
	ErrAttemptInFlight   = errors.New("a checkout attempt is already in progress")
	errMissingPaymentID  = errors.New("payment response is missing a payment id")
	fallbackErrorMessage = "payment could not be processed, please try again"
)

// Error is a failed remote step surfaced to the user. The server-supplied
// message is shown verbatim when present, a generic fallback otherwise.
type Error struct {
	Step State
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fallbackErrorMessage
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type (
	// API is what the orchestrator needs from the remote platform.
	API interface {
		// CreatePayment requires bearer authentication; idempotencyKey
		// deduplicates double submissions server-side.
		CreatePayment(ctx context.Context, token, idempotencyKey string, req PaymentRequest) (Payment, error)
		CreateEnrollment(ctx context.Context, token string, req EnrollmentRequest) (Enrollment, error)
		ListEnrollments(ctx context.Context, token, userID string) ([]Enrollment, error)
	}

	// Service sequences payment creation then enrollment creation and drives
	// the local cart side effects. One attempt may be in flight per user.
	Service struct {
		cartSvc  *cart.Service
		api      API
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger

		mu     sync.Mutex
		states map[string]State // attempt state per user; terminal states linger until the next begin
	}
)

func NewService(
	cartSvc *cart.Service,
	api API,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		cartSvc:  cartSvc,
		api:      api,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
		states:   make(map[string]State),
	}
}

// State reports the state of the user's active attempt, StateIdle if none.
func (svc *Service) State(userID string) State {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if s, ok := svc.states[userID]; ok {
		return s
	}
	return StateIdle
}

func (svc *Service) setState(userID string, s State) {
	svc.mu.Lock()
	svc.states[userID] = s
	svc.mu.Unlock()
}

// begin claims the user's attempt slot; only one attempt may be active.
func (svc *Service) begin(userID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if s, ok := svc.states[userID]; ok && !s.IsTerminal() && s != StateIdle {
		return ErrAttemptInFlight
	}
	svc.states[userID] = StateCreatingPayment
	return nil
}

// end releases the slot. Terminal states stay observable until the next
// begin; an attempt abandoned mid-flight (panic) resets to idle.
func (svc *Service) end(userID string) {
	svc.mu.Lock()
	if s, ok := svc.states[userID]; ok && !s.IsTerminal() {
		delete(svc.states, userID)
	}
	svc.mu.Unlock()
}

// Submit runs a full checkout attempt: validate locally, create the payment,
// create the enrollment keyed by the returned payment id, then clear the cart
// and report the confirmation route. Either remote failure terminates the
// attempt; the cart is left untouched so the user may resubmit.
func (svc *Service) Submit(ctx context.Context, sess Session, sub Submission) (Result, error) {
	// local validation; rejected before any network call
	if err := sub.Validate(svc.validate); err != nil {
		return Result{}, err
	}
	items, err := svc.cartSvc.Items(ctx, sess.UserID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, core.NewValidationError(ErrEmptyCart)
	}

	if err = svc.begin(sess.UserID); err != nil {
		return Result{}, err
	}
	defer svc.end(sess.UserID)

	// single-course purchase: the checkout only considers the sole cart item
	item := items[0]

	payment, err := svc.createPayment(ctx, sess, sub, item)
	if err != nil {
		svc.setState(sess.UserID, StateFailed)
		return Result{}, err
	}

	enrollment, err := svc.createEnrollment(ctx, sess, item, payment)
	if err != nil {
		// the payment already exists server-side with no matching enrollment;
		// there is no compensating call, flag it for reconciliation
		svc.logger.Warn(
			fmt.Sprintf("enrollment failed for payment %s (user %s, course %d): %v", payment.ID, sess.UserID, item.ID, err),
			err,
		)
		svc.setState(sess.UserID, StateFailed)
		return Result{}, err
	}

	svc.complete(ctx, sess, item, payment)

	return Result{
		State:      StateCompleted,
		Payment:    payment,
		Enrollment: enrollment,
		Redirect:   ConfirmationRoute,
	}, nil
}

// Enrollments fetches the user's enrollment list from the platform.
func (svc *Service) Enrollments(ctx context.Context, sess Session) ([]Enrollment, error) {
	return svc.api.ListEnrollments(ctx, sess.Token, sess.UserID)
}

func (svc *Service) createPayment(ctx context.Context, sess Session, sub Submission, item cart.Item) (Payment, error) {
	req := PaymentRequest{
		UserID:        sess.UserID,
		CourseID:      item.ID,
		PhoneNumber:   sub.PhoneNumber,
		Amount:        item.Subtotal(),
		Currency:      Currency,
		Status:        paymentStatusPending,
		PaymentMethod: ParseMethod(sub.MethodLabel),
	}

	payment, err := svc.api.CreatePayment(ctx, sess.Token, uuid.New().String(), req)
	if err != nil {
		return Payment{}, &Error{Step: StateCreatingPayment, Err: err}
	}
	if payment.ID == "" {
		return Payment{}, &Error{Step: StateCreatingPayment, Err: errMissingPaymentID}
	}
	return payment, nil
}

func (svc *Service) createEnrollment(ctx context.Context, sess Session, item cart.Item, payment Payment) (Enrollment, error) {
	svc.setState(sess.UserID, StateCreatingEnrollment)

	req := EnrollmentRequest{
		UserID:    sess.UserID,
		CourseID:  item.ID,
		PaymentID: payment.ID,
		Status:    enrollmentStatusInProgress,
	}
	enrollment, err := svc.api.CreateEnrollment(ctx, sess.Token, req)
	if err != nil {
		return Enrollment{}, &Error{Step: StateCreatingEnrollment, Err: err}
	}
	return enrollment, nil
}

// complete performs the success-path side effects exactly once: refresh the
// user's enrollment list, clear the cart (in-memory and durable mirror) and
// send the receipt. Failures here are logged, never surfaced; the purchase
// already went through.
func (svc *Service) complete(ctx context.Context, sess Session, item cart.Item, payment Payment) {
	svc.setState(sess.UserID, StateCompleted)

	if _, err := svc.api.ListEnrollments(ctx, sess.Token, sess.UserID); err != nil {
		svc.logger.Warn(fmt.Sprintf("refreshing enrollments for user %s: %v", sess.UserID, err), err)
	}

	if err := svc.cartSvc.Clear(ctx, sess.UserID); err != nil {
		svc.logger.Error(fmt.Sprintf("clearing cart for user %s: %v", sess.UserID, err), err)
	}

	if sess.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Address: sess.Email}},
			Subject:      "Your payment receipt",
			TemplateName: "purchase-receipt",
			TemplateData: struct {
				CourseTitle string
				Amount      float64
				Currency    string
				PaymentID   string
			}{item.Title, payment.Amount, payment.Currency, payment.ID},
		})
	}
}
