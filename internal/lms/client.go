package lms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tomnomnom/linkheader"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is the LMS roster API
type Client interface {
	// GetUser returns the profile for a SIS login id
	GetUser(ctx context.Context, sisLoginID string) (*User, error)
	CreateUser(ctx context.Context, profile UserProfile) (*User, error)
	UpdateUser(ctx context.Context, profile UserProfile) (*User, error)

	// SyncUser creates the user if absent and updates it only on name or email drift
	SyncUser(ctx context.Context, profile UserProfile) (*User, error)

	GetCourse(ctx context.Context, id int64) (*Course, error)
	CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	// CreateSection creates a section linked to (term, crn) in a course
	CreateSection(ctx context.Context, courseID int64, name, term, crn string) (*Section, error)
	DeleteSection(ctx context.Context, id int64) error

	ListCourseEnrollments(ctx context.Context, courseID int64, filter EnrollmentFilter) ([]Enrollment, error)
	ListSectionEnrollments(ctx context.Context, sectionID int64, filter EnrollmentFilter) ([]Enrollment, error)

	// ListUserEnrollments returns the user's active student enrollments in sections linked to term
	ListUserEnrollments(ctx context.Context, sisLoginID, term string) ([]Enrollment, error)

	GetEnrollment(ctx context.Context, id int64) (*Enrollment, error)
	EnrollStudent(ctx context.Context, sectionID, userID int64) (*Enrollment, error)

	// DropStudent inactivates an enrollment
	DropStudent(ctx context.Context, enrollment Enrollment) (*Enrollment, error)

	// DeleteStudent removes an enrollment entirely
	DeleteStudent(ctx context.Context, enrollment Enrollment) (*Enrollment, error)

	GetEnrollmentTerms(ctx context.Context) ([]EnrollmentTerm, error)

	// GetEnrollmentTermBySISID returns ErrEnrollmentTermNotFound when no term matches
	GetEnrollmentTermBySISID(ctx context.Context, sisTermID string) (*EnrollmentTerm, error)

	// ListCoursesByEnrollmentTerm returns created, claimed and available courses of a term
	ListCoursesByEnrollmentTerm(ctx context.Context, termID int64) ([]Course, error)
}

const (
	// ClientTracerName is the name used for the LMS client tracer
	ClientTracerName = "github.com/stacklok/roster-sync/lms"

	// UserAgent is sent on every request
	UserAgent = "roster-sync/1.0"

	defaultTimeout       = 20 * time.Second
	defaultAccountID     = "1"
	defaultMaxRetries    = 3
	defaultRetryInterval = 500 * time.Millisecond
	pageSize             = "100"
	maxBodySize          = 10 << 20
	maxErrorBodySize     = 512
)

type options struct {
	httpClient    *http.Client
	accountID     string
	institution   string
	maxRetries    int
	retryInterval time.Duration
	limiter       *rate.Limiter
	metrics       *telemetry.LMSMetrics
	tracer        trace.Tracer
}

// Option configures the client
type Option func(*options) error

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		if c == nil {
			return fmt.Errorf("http client must not be nil")
		}
		o.httpClient = c
		return nil
	}
}

// WithAccountID sets the root account used for account-scoped endpoints
func WithAccountID(id string) Option {
	return func(o *options) error {
		if id == "" {
			return fmt.Errorf("account id must not be empty")
		}
		o.accountID = id
		return nil
	}
}

// WithInstitution labels metrics and logs with the institution name
func WithInstitution(name string) Option {
	return func(o *options) error {
		o.institution = name
		return nil
	}
}

// WithMaxRetries sets how often a retryable request is retried
func WithMaxRetries(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("max retries must not be negative, got %d", n)
		}
		o.maxRetries = n
		return nil
	}
}

// WithRetryInterval sets the initial backoff interval
func WithRetryInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("retry interval must be positive, got %s", d)
		}
		o.retryInterval = d
		return nil
	}
}

// WithRateLimit throttles requests to rps per second. Zero disables throttling.
func WithRateLimit(rps float64) Option {
	return func(o *options) error {
		if rps < 0 {
			return fmt.Errorf("requests per second must not be negative, got %v", rps)
		}
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
		return nil
	}
}

// WithMetrics records usage telemetry on m
func WithMetrics(m *telemetry.LMSMetrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithTracer sets the tracer for request spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

type defaultClient struct {
	baseURL       *url.URL
	token         string
	httpClient    *http.Client
	accountID     string
	institution   string
	maxRetries    int
	retryInterval time.Duration
	limiter       *rate.Limiter
	metrics       *telemetry.LMSMetrics
	tracer        trace.Tracer
}

var _ Client = (*defaultClient)(nil)

// NewClient creates a client for the LMS API rooted at baseURL (for example
// https://lms.example.edu/api/v1) authenticating with a bearer token
func NewClient(baseURL, token string, opts ...Option) (Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", baseURL)
	}
	if token == "" {
		return nil, fmt.Errorf("api token is required")
	}

	o := &options{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		accountID:     defaultAccountID,
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return &defaultClient{
		baseURL:       u,
		token:         token,
		httpClient:    o.httpClient,
		accountID:     o.accountID,
		institution:   o.institution,
		maxRetries:    o.maxRetries,
		retryInterval: o.retryInterval,
		limiter:       o.limiter,
		metrics:       o.metrics,
		tracer:        o.tracer,
	}, nil
}

func (c *defaultClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type response struct {
	header http.Header
	body   []byte
}

// send performs one logical request, retrying 429s and idempotent 5xx responses
func (c *defaultClient) send(ctx context.Context, method, target string, form url.Values) (*response, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "lms."+method, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			otel.AttrInstitution.String(c.institution),
			attribute.String("http.request.method", method),
		))
	defer span.End()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval

	attempt := func() (*response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		resp, err := c.roundTrip(ctx, method, target, form)
		if err != nil {
			var httpErr *HTTPError
			isHTTP := errors.As(err, &httpErr)
			if isHTTP && !retryable(method, httpErr.StatusCode) {
				return nil, backoff.Permanent(err)
			}
			if !isHTTP && !idempotent(method) {
				return nil, backoff.Permanent(err)
			}
			slog.Debug("Retrying LMS request", "method", method, "url", target, "error", err)
			return nil, err
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		if !IsNotFound(err) {
			otel.RecordError(span, err)
		}
		return nil, err
	}
	return resp, nil
}

func (c *defaultClient) roundTrip(ctx context.Context, method, target string, form url.Values) (*response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform %s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.recordUsage(ctx, method, resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := string(data)
		if len(msg) > maxErrorBodySize {
			msg = msg[:maxErrorBodySize]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Method: method, URL: target, Body: msg}
	}

	return &response{header: resp.Header, body: data}, nil
}

func (c *defaultClient) recordUsage(ctx context.Context, method string, resp *http.Response) {
	c.metrics.RecordRequest(ctx, c.institution, method, resp.StatusCode)

	remaining, errRemaining := strconv.ParseFloat(resp.Header.Get("X-Rate-Limit-Remaining"), 64)
	cost, errCost := strconv.ParseFloat(resp.Header.Get("X-Request-Cost"), 64)
	if errRemaining != nil || errCost != nil {
		return
	}
	slog.Debug("LMS API usage",
		"institution", c.institution,
		"rate_limit_remaining", remaining,
		"request_cost", cost)
	c.metrics.RecordUsage(ctx, c.institution, remaining, cost)
}

// doJSON sends a request and decodes the response body into out
func (c *defaultClient) doJSON(ctx context.Context, method, target string, form url.Values, out any) error {
	resp, err := c.send(ctx, method, target, form)
	if err != nil {
		return err
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, target, err)
	}
	return nil
}

// getAll follows rel="next" links and concatenates every page
func getAll[T any](ctx context.Context, c *defaultClient, target string) ([]T, error) {
	var (
		result []T
		pages  int
	)
	for target != "" {
		resp, err := c.send(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		var page []T
		if err := json.Unmarshal(resp.body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode page %d of %s: %w", pages+1, target, err)
		}
		result = append(result, page...)
		pages++

		target = ""
		if next := linkheader.Parse(resp.header.Get("Link")).FilterByRel("next"); len(next) > 0 {
			target = next[0].URL
		}
	}
	slog.Debug("Fetched paginated LMS collection", "pages", pages, "entries", len(result))
	return result, nil
}
