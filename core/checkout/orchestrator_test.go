package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cart"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

// fakeAPI stands in for the remote platform; every call is recorded.
type fakeAPI struct {
	mu sync.Mutex

	createPaymentFunc    func(req PaymentRequest) (Payment, error)
	createEnrollmentFunc func(req EnrollmentRequest) (Enrollment, error)
	listEnrollmentsFunc  func(userID string) ([]Enrollment, error)

	paymentCalls    int
	enrollmentCalls int
	listCalls       int

	lastIdemKey       string
	lastPaymentReq    PaymentRequest
	lastEnrollmentReq EnrollmentRequest
}

var _ API = (*fakeAPI)(nil)

func (api *fakeAPI) CreatePayment(ctx context.Context, token, idempotencyKey string, req PaymentRequest) (Payment, error) {
	api.mu.Lock()
	api.paymentCalls++
	api.lastIdemKey = idempotencyKey
	api.lastPaymentReq = req
	fn := api.createPaymentFunc
	api.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return Payment{ID: "p1", PaymentRequest: req}, nil
}

func (api *fakeAPI) CreateEnrollment(ctx context.Context, token string, req EnrollmentRequest) (Enrollment, error) {
	api.mu.Lock()
	api.enrollmentCalls++
	api.lastEnrollmentReq = req
	fn := api.createEnrollmentFunc
	api.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return Enrollment{ID: "e1", EnrollmentRequest: req}, nil
}

func (api *fakeAPI) ListEnrollments(ctx context.Context, token, userID string) ([]Enrollment, error) {
	api.mu.Lock()
	api.listCalls++
	fn := api.listEnrollmentsFunc
	api.mu.Unlock()

	if fn != nil {
		return fn(userID)
	}
	return nil, nil
}

type testEnv struct {
	svc     *Service
	cartSvc *cart.Service
	api     *fakeAPI
	mailSvc interface {
		core.EmailService
		Sent() []core.EmailMessage
	}
	db *dummydb.DB
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := testutil.NewConfig()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	cartSvc := cart.NewService(dummydb.NewCartRepository(db))

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	api := &fakeAPI{}
	mailSvc := emailsvc.NewMockService(conf)
	svc := NewService(cartSvc, api, mailSvc, validate, testutil.NopLogger{})

	return &testEnv{svc: svc, cartSvc: cartSvc, api: api, mailSvc: mailSvc, db: db}
}

func seedCart(t *testing.T, env *testEnv, userID string, items ...cart.NewItem) {
	t.Helper()
	if len(items) == 0 {
		items = []cart.NewItem{{ID: 7, Title: "Go from scratch", Price: 49.99, Quantity: 1}}
	}
	for _, ni := range items {
		if _, err := env.cartSvc.Add(context.Background(), userID, ni); err != nil {
			t.Fatalf("seeding cart: %v", err)
		}
	}
}

var (
	sess = Session{UserID: "u1", Email: "u1@test.cd", Token: "tok"}
	sub  = Submission{PhoneNumber: "+252634567890", MethodLabel: "ZAAD Service"}
)

func TestService_Submit_success(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	seedCart(t, env, sess.UserID)

	res, err := env.svc.Submit(ctx, sess, sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// payment request carries the cart item and the fixed fields
	preq := env.api.lastPaymentReq
	if preq.UserID != "u1" || preq.CourseID != 7 {
		t.Errorf("payment req identity = %+v; want userId u1, courseId 7", preq)
	}
	if preq.Amount != 49.99 {
		t.Errorf("payment req amount = %v; want 49.99", preq.Amount)
	}
	if preq.Currency != Currency || preq.Status != "PENDING" {
		t.Errorf("payment req currency/status = %q/%q; want %q/PENDING", preq.Currency, preq.Status, Currency)
	}
	if preq.PaymentMethod != MethodZaad {
		t.Errorf("payment req method = %q; want %q", preq.PaymentMethod, MethodZaad)
	}
	if env.api.lastIdemKey == "" {
		t.Error("payment call carried no idempotency key")
	}

	// the enrollment is keyed by the server-assigned payment id
	ereq := env.api.lastEnrollmentReq
	if ereq.PaymentID != "p1" {
		t.Errorf("enrollment req paymentId = %q; want p1", ereq.PaymentID)
	}
	if ereq.UserID != "u1" || ereq.CourseID != 7 {
		t.Errorf("enrollment req identity = %+v; want userId u1, courseId 7", ereq)
	}
	if ereq.IsEnrolled {
		t.Error("enrollment req isEnrolled = true; want false")
	}
	if ereq.Status != "IN_PROGRESS" {
		t.Errorf("enrollment req status = %q; want IN_PROGRESS", ereq.Status)
	}

	// result
	if res.State != StateCompleted {
		t.Errorf("result state = %q; want %q", res.State, StateCompleted)
	}
	if res.Payment.ID != "p1" || res.Enrollment.ID != "e1" {
		t.Errorf("result records = %q/%q; want p1/e1", res.Payment.ID, res.Enrollment.ID)
	}
	if res.Redirect != ConfirmationRoute {
		t.Errorf("result redirect = %q; want %q", res.Redirect, ConfirmationRoute)
	}

	// success side effects: enrollment refresh, cart cleared in both layers, receipt
	if env.api.listCalls != 1 {
		t.Errorf("enrollment list refreshed %d times; want 1", env.api.listCalls)
	}
	items, _ := env.cartSvc.Items(ctx, sess.UserID)
	if len(items) != 0 {
		t.Errorf("cart after success = %+v; want empty", items)
	}
	if dummydb.HasSlot(env.db, sess.UserID) {
		t.Error("durable slot still present after success")
	}
	if sent := env.mailSvc.Sent(); len(sent) != 1 || sent[0].TemplateName != "purchase-receipt" {
		t.Errorf("receipts sent = %+v; want a single purchase-receipt", sent)
	}

	// the terminal state stays observable
	if s := env.svc.State(sess.UserID); s != StateCompleted {
		t.Errorf("State() after success = %q; want %q", s, StateCompleted)
	}
}

func TestService_Submit_validation(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
	}{
		{name: "short phone", sub: Submission{PhoneNumber: "123", MethodLabel: "ZAAD Service"}},
		{name: "non-numeric phone", sub: Submission{PhoneNumber: "not-a-phone", MethodLabel: "ZAAD Service"}},
		{name: "missing phone", sub: Submission{MethodLabel: "ZAAD Service"}},
		{name: "missing method", sub: Submission{PhoneNumber: "+252634567890"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			seedCart(t, env, sess.UserID)

			if _, err := env.svc.Submit(context.Background(), sess, tt.sub); err == nil {
				t.Fatal("Submit() expected a validation error, got nil")
			}
			// rejected before any network call
			if env.api.paymentCalls != 0 || env.api.enrollmentCalls != 0 {
				t.Errorf("remote calls = %d/%d; want none", env.api.paymentCalls, env.api.enrollmentCalls)
			}
		})
	}
}

func TestService_Submit_emptyCart(t *testing.T) {
	env := setup(t)

	_, err := env.svc.Submit(context.Background(), sess, sub)
	if err == nil {
		t.Fatal("Submit() expected error, got nil")
	}
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Submit() error = %T(%v); want *core.ValidationError", err, err)
	}
	if !errors.Is(vErr.Err, ErrEmptyCart) {
		t.Errorf("Submit() error = %v; want %v", vErr.Err, ErrEmptyCart)
	}
	if env.api.paymentCalls != 0 {
		t.Errorf("payment calls = %d; want none", env.api.paymentCalls)
	}
}

func TestService_Submit_paymentFailure(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	seedCart(t, env, sess.UserID)

	env.api.createPaymentFunc = func(req PaymentRequest) (Payment, error) {
		return Payment{}, errors.New("insufficient balance")
	}

	_, err := env.svc.Submit(ctx, sess, sub)
	if err == nil {
		t.Fatal("Submit() expected error, got nil")
	}
	var chErr *Error
	if !errors.As(err, &chErr) {
		t.Fatalf("Submit() error = %T(%v); want *checkout.Error", err, err)
	}
	if chErr.Step != StateCreatingPayment {
		t.Errorf("error step = %q; want %q", chErr.Step, StateCreatingPayment)
	}
	if chErr.Error() != "insufficient balance" {
		t.Errorf("error message = %q; want the server message verbatim", chErr.Error())
	}

	// enrollment is never attempted and the cart survives for a retry
	if env.api.enrollmentCalls != 0 {
		t.Errorf("enrollment calls = %d; want none", env.api.enrollmentCalls)
	}
	items, _ := env.cartSvc.Items(ctx, sess.UserID)
	if len(items) != 1 {
		t.Errorf("cart after failure = %+v; want the original item", items)
	}
	if len(env.mailSvc.Sent()) != 0 {
		t.Error("a receipt was sent for a failed attempt")
	}

	// the failure stays observable, and a fresh attempt may start from it
	if s := env.svc.State(sess.UserID); s != StateFailed {
		t.Errorf("State() after failure = %q; want %q", s, StateFailed)
	}
	env.api.createPaymentFunc = nil
	if _, err = env.svc.Submit(ctx, sess, sub); err != nil {
		t.Fatalf("Submit() after failure error = %v", err)
	}
	if s := env.svc.State(sess.UserID); s != StateCompleted {
		t.Errorf("State() after retry = %q; want %q", s, StateCompleted)
	}
}

func TestService_Submit_missingPaymentID(t *testing.T) {
	env := setup(t)
	seedCart(t, env, sess.UserID)

	env.api.createPaymentFunc = func(req PaymentRequest) (Payment, error) {
		return Payment{PaymentRequest: req}, nil // success envelope, no id
	}

	_, err := env.svc.Submit(context.Background(), sess, sub)
	if err == nil {
		t.Fatal("Submit() expected error, got nil")
	}
	var chErr *Error
	if !errors.As(err, &chErr) || chErr.Step != StateCreatingPayment {
		t.Fatalf("Submit() error = %v; want a payment-step error", err)
	}
	if env.api.enrollmentCalls != 0 {
		t.Errorf("enrollment calls = %d; want none", env.api.enrollmentCalls)
	}
}

func TestService_Submit_enrollmentFailure(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	seedCart(t, env, sess.UserID)

	env.api.createEnrollmentFunc = func(req EnrollmentRequest) (Enrollment, error) {
		return Enrollment{}, errors.New("course is full")
	}

	_, err := env.svc.Submit(ctx, sess, sub)
	if err == nil {
		t.Fatal("Submit() expected error, got nil")
	}
	var chErr *Error
	if !errors.As(err, &chErr) {
		t.Fatalf("Submit() error = %T(%v); want *checkout.Error", err, err)
	}
	if chErr.Step != StateCreatingEnrollment {
		t.Errorf("error step = %q; want %q", chErr.Step, StateCreatingEnrollment)
	}

	// no compensation: the cart and its durable slot are left untouched
	items, _ := env.cartSvc.Items(ctx, sess.UserID)
	if len(items) != 1 {
		t.Errorf("cart after enrollment failure = %+v; want the original item", items)
	}
	if !dummydb.HasSlot(env.db, sess.UserID) {
		t.Error("durable slot gone after enrollment failure")
	}
	if env.api.listCalls != 0 {
		t.Errorf("enrollment list refreshed %d times; want none", env.api.listCalls)
	}
	if len(env.mailSvc.Sent()) != 0 {
		t.Error("a receipt was sent for a failed attempt")
	}
}

func TestService_Submit_unknownMethodLabel(t *testing.T) {
	env := setup(t)
	seedCart(t, env, sess.UserID)

	unknown := Submission{PhoneNumber: "+252634567890", MethodLabel: "Unknown Service"}
	if _, err := env.svc.Submit(context.Background(), sess, unknown); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	// unrecognized labels go through with the sentinel; the server decides
	if got := env.api.lastPaymentReq.PaymentMethod; got != MethodUnknown {
		t.Errorf("payment req method = %q; want %q", got, MethodUnknown)
	}
}

func TestService_Submit_attemptInFlight(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	seedCart(t, env, sess.UserID)

	started := make(chan struct{})
	release := make(chan struct{})
	env.api.createPaymentFunc = func(req PaymentRequest) (Payment, error) {
		close(started)
		<-release
		return Payment{ID: "p1", PaymentRequest: req}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := env.svc.Submit(ctx, sess, sub)
		done <- err
	}()

	<-started
	if s := env.svc.State(sess.UserID); s != StateCreatingPayment {
		t.Errorf("State() mid-attempt = %q; want %q", s, StateCreatingPayment)
	}
	if _, err := env.svc.Submit(ctx, sess, sub); err != ErrAttemptInFlight {
		t.Errorf("second Submit() error = %v; want %v", err, ErrAttemptInFlight)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if env.api.paymentCalls != 1 {
		t.Errorf("payment calls = %d; want 1", env.api.paymentCalls)
	}
}

func TestService_Enrollments(t *testing.T) {
	env := setup(t)
	env.api.listEnrollmentsFunc = func(userID string) ([]Enrollment, error) {
		return []Enrollment{{ID: "e1"}, {ID: "e2"}}, nil
	}

	enrollments, err := env.svc.Enrollments(context.Background(), sess)
	if err != nil {
		t.Fatalf("Enrollments() error = %v", err)
	}
	if len(enrollments) != 2 {
		t.Errorf("Enrollments() = %+v; want 2 records", enrollments)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		label string
		want  PaymentMethod
	}{
		{label: "ZAAD Service", want: MethodZaad},
		{label: "EDAHAB Service", want: MethodEdahab},
		{label: "Cash on Delivery", want: MethodCashOnDelivery},
		{label: "  ZAAD Service  ", want: MethodZaad},
		{label: "Unknown Service", want: MethodUnknown},
		{label: "", want: MethodUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseMethod(tt.label); got != tt.want {
				t.Errorf("ParseMethod(%q) = %q; want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	withMsg := &Error{Step: StateCreatingPayment, Err: errors.New("card declined")}
	if withMsg.Error() != "card declined" {
		t.Errorf("Error() = %q; want the server message verbatim", withMsg.Error())
	}

	noMsg := &Error{Step: StateCreatingPayment}
	if noMsg.Error() != fallbackErrorMessage {
		t.Errorf("Error() = %q; want the fallback message", noMsg.Error())
	}
}
