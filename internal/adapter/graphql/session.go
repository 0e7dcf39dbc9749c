package graphql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/repository"
)

const tracerName = "github.com/user/hotel-scraper/internal/adapter/graphql"

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// StatusError is returned when the search endpoint answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search endpoint returned %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Options configures the search endpoint and request headers shared by all sessions.
type Options struct {
	BaseURL   string
	Path      string
	UserAgent string
	Timeout   time.Duration
	// Headers are forwarded on every request, typically captured from a browser session.
	Headers map[string]string
}

// SessionFactory creates per-day HTTP sessions. All sessions share one rate limiter
// so parallel days cannot exceed the configured request rate together.
type SessionFactory struct {
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewSessionFactory builds a factory. A nil limiter disables rate limiting.
func NewSessionFactory(opts Options, limiter *rate.Limiter, logger *zap.Logger) *SessionFactory {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &SessionFactory{
		opts:    opts,
		limiter: limiter,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// SetHeaders replaces the forwarded headers for sessions created afterwards.
func (f *SessionFactory) SetHeaders(headers map[string]string) {
	f.opts.Headers = headers
}

func (f *SessionFactory) NewSession() repository.SearchSession {
	client := resty.New().
		SetBaseURL(f.opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "*/*").
		SetHeaders(f.opts.Headers)
	if f.opts.UserAgent != "" {
		client.SetHeader("User-Agent", f.opts.UserAgent)
	}
	if f.opts.Timeout > 0 {
		client.SetTimeout(f.opts.Timeout)
	}

	return &Session{
		client:  client,
		path:    f.opts.Path,
		limiter: f.limiter,
		logger:  f.logger,
		tracer:  f.tracer,
	}
}

// Session is one reusable HTTP client. It is safe for concurrent use.
type Session struct {
	client  *resty.Client
	path    string
	limiter *rate.Limiter
	logger  *zap.Logger
	tracer  trace.Tracer
}

func (s *Session) Search(ctx context.Context, currency string, query booking.Query) (*booking.Response, error) {
	input := query.Variables.Input
	ctx, span := s.tracer.Start(ctx, "graphql.search", trace.WithAttributes(
		attribute.String("search.city", input.Location.SearchString),
		attribute.String("search.checkin", input.Dates.CheckIn),
		attribute.String("search.checkout", input.Dates.CheckOut),
		attribute.Int("search.offset", input.Pagination.Offset),
		attribute.String("search.currency", currency),
	))
	defer span.End()

	resp, err := s.search(ctx, currency, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

func (s *Session) search(ctx context.Context, currency string, query booking.Query) (*booking.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("posting search query",
		zap.String("city", query.Variables.Input.Location.SearchString),
		zap.String("checkin", query.Variables.Input.Dates.CheckIn),
		zap.Int("offset", query.Variables.Input.Pagination.Offset),
	)

	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("selected_currency", currency).
		SetBody(query).
		Post(s.path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
	if res.StatusCode() != http.StatusOK {
		return nil, &StatusError{StatusCode: res.StatusCode(), Body: truncate(res.String(), 512)}
	}

	decoded, err := booking.DecodeResponse(res.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to decode search response (%d bytes): %w", len(res.Body()), err)
	}
	return decoded, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
