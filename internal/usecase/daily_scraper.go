package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/pkg/metrics"
)

const tracerName = "github.com/user/hotel-scraper/internal/usecase"

// DayScraper scrapes every result page for one stay window.
type DayScraper interface {
	// ScrapeDay returns the enriched rows for req. A nil slice with a nil error
	// means the day produced nothing (invalid request, failed first page or no
	// results). Errors are reserved for parameter mismatches, which wrap
	// booking.ErrParameterMismatch, and context cancellation.
	ScrapeDay(ctx context.Context, req entity.ScrapeRequest) ([]entity.HotelRow, error)
}

type DailyScraper struct {
	sessions        repository.SearchSessionFactory
	metrics         *metrics.Metrics
	logger          *zap.Logger
	pageConcurrency int
	tracer          trace.Tracer
	now             func() time.Time
}

// NewDailyScraper creates a scraper fetching at most pageConcurrency pages of a
// day at once.
func NewDailyScraper(sessions repository.SearchSessionFactory, m *metrics.Metrics, logger *zap.Logger, pageConcurrency int) *DailyScraper {
	if pageConcurrency < 1 {
		pageConcurrency = 1
	}
	return &DailyScraper{
		sessions:        sessions,
		metrics:         m,
		logger:          logger,
		pageConcurrency: pageConcurrency,
		tracer:          otel.Tracer(tracerName),
		now:             time.Now,
	}
}

func (s *DailyScraper) ScrapeDay(ctx context.Context, req entity.ScrapeRequest) ([]entity.HotelRow, error) {
	logger := s.logger.With(
		zap.String("city", req.City),
		zap.String("checkin", req.CheckIn),
		zap.String("checkout", req.CheckOut),
	)

	if field := req.MissingRequired(); field != "" {
		logger.Warn("skipping request with empty required field", zap.String("field", field))
		s.metrics.DaysTotal.WithLabelValues("invalid").Inc()
		return nil, nil
	}

	ctx, span := s.tracer.Start(ctx, "usecase.scrape_day", trace.WithAttributes(
		attribute.String("search.city", req.City),
		attribute.String("search.checkin", req.CheckIn),
		attribute.String("search.checkout", req.CheckOut),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.DayDuration.Observe(time.Since(start).Seconds())
	}()

	rows, err := s.scrape(ctx, logger, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}

func (s *DailyScraper) scrape(ctx context.Context, logger *zap.Logger, req entity.ScrapeRequest) ([]entity.HotelRow, error) {
	session := s.sessions.NewSession()

	first, err := session.Search(ctx, req.Currency, booking.BuildQuery(req, 0))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("first search page failed, skipping day", zap.Error(err))
		s.metrics.PagesTotal.WithLabelValues("failed").Inc()
		s.metrics.DaysTotal.WithLabelValues("failed").Inc()
		return nil, nil
	}
	s.metrics.PagesTotal.WithLabelValues("ok").Inc()

	total, confirmed, err := booking.Validate(first, req)
	if err != nil {
		var mismatch *booking.MismatchError
		if errors.As(err, &mismatch) {
			s.metrics.ValidationFailures.WithLabelValues(mismatch.Field).Inc()
		}
		s.metrics.DaysTotal.WithLabelValues("mismatch").Inc()
		logger.Error("search response does not match request", zap.Error(err))
		return nil, err
	}
	if total == 0 {
		logger.Warn("search returned no results")
		s.metrics.DaysTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}
	logger.Debug("search parameters confirmed",
		zap.Int("total", total),
		zap.String("currency", confirmed.Currency),
		zap.Int("adults", confirmed.Adults),
	)

	acc := booking.NewAccumulator()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pageConcurrency)
	for _, offset := range booking.PageOffsets(total) {
		g.Go(func() error {
			return s.fetchPage(gctx, logger, session, req, offset, acc)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := acc.Rows()
	if len(rows) == 0 {
		logger.Warn("no rows extracted from any page", zap.Int("total", total))
		s.metrics.DaysTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}

	asOf := s.now()
	for i := range rows {
		rows[i].City = req.City
		rows[i].Date = req.CheckIn
		rows[i].AsOf = asOf
		rows[i].PricePerReview = rows[i].Price / rows[i].Review
	}

	s.metrics.RowsExtracted.Add(float64(len(rows)))
	s.metrics.DaysTotal.WithLabelValues("rows").Inc()
	logger.Info("day scraped", zap.Int("total", total), zap.Int("pages", acc.Frames()), zap.Int("rows", len(rows)))
	return rows, nil
}

// fetchPage degrades any failure other than cancellation to an empty page.
func (s *DailyScraper) fetchPage(ctx context.Context, logger *zap.Logger, session repository.SearchSession, req entity.ScrapeRequest, offset int, acc *booking.Accumulator) error {
	resp, err := session.Search(ctx, req.Currency, booking.BuildQuery(req, offset))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("search page failed", zap.Int("offset", offset), zap.Error(err))
		s.metrics.PagesTotal.WithLabelValues("failed").Inc()
		return nil
	}

	results, ok := resp.Results()
	if !ok {
		logger.Warn("search page has no result list", zap.Int("offset", offset), zap.Strings("errors", resp.Errors()))
		s.metrics.PagesTotal.WithLabelValues("failed").Inc()
		return nil
	}

	s.metrics.PagesTotal.WithLabelValues("ok").Inc()
	booking.ExtractProperties(acc, offset, results)
	return nil
}
