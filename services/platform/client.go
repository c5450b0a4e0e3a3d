package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/checkout"
	"github.com/trezcool/darasa/core/member"
)

const idempotencyKeyHeader = "X-Idempotency-Key"

// Error is an application-level error reported by the platform API.
// Its message is safe to surface to the end user.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("platform API request failed (status %d)", e.StatusCode)
}

// Client consumes the upstream platform REST API. It implements
// checkout.API, catalog.Lister and member.Lister.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ checkout.API   = (*Client)(nil)
	_ catalog.Lister = (*Client)(nil)
	_ member.Lister  = (*Client)(nil)
)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: conf.Platform.BaseURL,
		http:    &http.Client{Timeout: conf.Platform.Timeout},
	}
}

// response envelopes

type (
	paymentEnvelope struct {
		IsSuccess bool             `json:"isSuccess"`
		Message   string           `json:"message"`
		Payment   checkout.Payment `json:"payment"`
	}

	enrollmentEnvelope struct {
		IsSuccess  bool                `json:"isSuccess"`
		Message    string              `json:"message"`
		Enrollment checkout.Enrollment `json:"enrollment"`
	}

	enrollmentListEnvelope struct {
		IsSuccess   bool                  `json:"isSuccess"`
		Message     string                `json:"message"`
		Enrollments []checkout.Enrollment `json:"enrollments"`
	}

	courseListEnvelope struct {
		IsSuccess bool             `json:"isSuccess"`
		Message   string           `json:"message"`
		Courses   []catalog.Course `json:"courses"`
	}

	userListEnvelope struct {
		IsSuccess bool            `json:"isSuccess"`
		Message   string          `json:"message"`
		Users     []member.Member `json:"users"`
	}

	errorEnvelope struct {
		Message string `json:"message"`
	}
)

func (c *Client) CreatePayment(ctx context.Context, token, idempotencyKey string, req checkout.PaymentRequest) (checkout.Payment, error) {
	var env paymentEnvelope
	hdrs := http.Header{idempotencyKeyHeader: []string{idempotencyKey}}
	if err := c.do(ctx, http.MethodPost, "/payments/create", token, hdrs, req, &env); err != nil {
		return checkout.Payment{}, err
	}
	if !env.IsSuccess {
		return checkout.Payment{}, &Error{StatusCode: http.StatusOK, Message: env.Message}
	}
	return env.Payment, nil
}

func (c *Client) CreateEnrollment(ctx context.Context, token string, req checkout.EnrollmentRequest) (checkout.Enrollment, error) {
	var env enrollmentEnvelope
	if err := c.do(ctx, http.MethodPost, "/enrollments/create", token, nil, req, &env); err != nil {
		return checkout.Enrollment{}, err
	}
	if !env.IsSuccess {
		return checkout.Enrollment{}, &Error{StatusCode: http.StatusOK, Message: env.Message}
	}
	return env.Enrollment, nil
}

func (c *Client) ListEnrollments(ctx context.Context, token, userID string) ([]checkout.Enrollment, error) {
	path := "/enrollments/list"
	if userID != "" {
		path += "?userId=" + url.QueryEscape(userID)
	}
	var env enrollmentListEnvelope
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.IsSuccess {
		return nil, &Error{StatusCode: http.StatusOK, Message: env.Message}
	}
	return env.Enrollments, nil
}

func (c *Client) ListCourses(ctx context.Context, token string) ([]catalog.Course, error) {
	var env courseListEnvelope
	if err := c.do(ctx, http.MethodGet, "/courses/list", token, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.IsSuccess {
		return nil, &Error{StatusCode: http.StatusOK, Message: env.Message}
	}
	return env.Courses, nil
}

func (c *Client) ListMembers(ctx context.Context, token string) ([]member.Member, error) {
	var env userListEnvelope
	if err := c.do(ctx, http.MethodGet, "/users/list", token, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.IsSuccess {
		return nil, &Error{StatusCode: http.StatusOK, Message: env.Message}
	}
	return env.Users, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, hdrs http.Header, body, out interface{}) error {
	var buff bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buff).Encode(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buff)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range hdrs {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, method+" "+path)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusBadRequest {
		var env errorEnvelope
		_ = json.NewDecoder(res.Body).Decode(&env) // the body may not be JSON
		return &Error{StatusCode: res.StatusCode, Message: env.Message}
	}

	if out != nil {
		if err = json.NewDecoder(res.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decoding response body")
		}
	}
	return nil
}
