package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/pkg/utils"
)

// ReconcileResult summarises one reconciliation pass.
type ReconcileResult struct {
	Missing   []string `json:"missing"`
	Recovered []string `json:"recovered"`
	Rows      int      `json:"rows"`
}

// MissingDateReconciler finds the stay dates today's retrieval batch failed to
// store for a city and scrapes them again.
type MissingDateReconciler struct {
	rows   repository.HotelRowRepository
	days   DayScraper
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewMissingDateReconciler creates a reconciler. loc decides which dates have
// elapsed; nil means the local zone. The retrieval batch is always today in UTC.
func NewMissingDateReconciler(rows repository.HotelRowRepository, days DayScraper, loc *time.Location, logger *zap.Logger) *MissingDateReconciler {
	return &MissingDateReconciler{
		rows:   rows,
		days:   days,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// FindMissingDates returns, in ascending order, the not yet elapsed stay dates of
// year that today's batch holds no rows for. Months the batch never touched are
// not considered, and an empty batch yields no missing dates.
func (r *MissingDateReconciler) FindMissingDates(ctx context.Context, city string, year int) ([]string, error) {
	now := r.now()
	counts, err := r.rows.CountDatesByMonth(ctx, city, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to count stored dates for %s: %w", city, err)
	}
	if len(counts) == 0 {
		r.logger.Info("no rows retrieved today, nothing to reconcile", zap.String("city", city))
		return nil, nil
	}

	var missing []string
	for _, mc := range counts {
		y, m, err := utils.ParseMonth(mc.Month)
		if err != nil {
			r.logger.Warn("ignoring unparseable month", zap.String("month", mc.Month), zap.Error(err))
			continue
		}
		if y != year {
			continue
		}

		cov, err := r.coverage(ctx, city, y, m, mc.Count, now)
		if err != nil {
			return nil, err
		}
		if !cov.Complete() {
			r.logger.Info("month has missing dates",
				zap.String("city", city),
				zap.String("month", mc.Month),
				zap.Int("expected", cov.Expected),
				zap.Int("actual", cov.Actual),
				zap.Strings("missing", cov.Missing),
			)
		}
		missing = append(missing, cov.Missing...)
	}

	slices.Sort(missing)
	return slices.Compact(missing), nil
}

// Coverage reports expected, stored and missing stay dates for one month of
// today's batch.
func (r *MissingDateReconciler) Coverage(ctx context.Context, city string, year int, month time.Month) (entity.DateCoverage, error) {
	if month < time.January || month > time.December {
		return entity.DateCoverage{}, fmt.Errorf("invalid month %d", month)
	}

	now := r.now()
	counts, err := r.rows.CountDatesByMonth(ctx, city, now.UTC())
	if err != nil {
		return entity.DateCoverage{}, fmt.Errorf("failed to count stored dates for %s: %w", city, err)
	}

	key := utils.FormatMonth(year, month)
	actual := 0
	for _, mc := range counts {
		if mc.Month == key {
			actual = mc.Count
			break
		}
	}
	return r.coverage(ctx, city, year, month, actual, now)
}

func (r *MissingDateReconciler) coverage(ctx context.Context, city string, year int, month time.Month, actual int, now time.Time) (entity.DateCoverage, error) {
	today := utils.Today(now, r.loc)
	key := utils.FormatMonth(year, month)
	cov := entity.DateCoverage{
		City:     city,
		Month:    key,
		AsOf:     utils.FormatDate(now.UTC()),
		Expected: utils.ExpectedDays(year, month, today),
		Actual:   actual,
	}
	if cov.Actual == cov.Expected {
		return cov, nil
	}

	stored, err := r.rows.FindDatesInMonth(ctx, city, key, now.UTC())
	if err != nil {
		return cov, fmt.Errorf("failed to list stored dates for %s %s: %w", city, key, err)
	}
	present := make(map[string]bool, len(stored))
	for _, d := range stored {
		present[d] = true
	}

	for _, d := range utils.MonthDates(year, month) {
		if utils.HasElapsed(d, now, r.loc) {
			continue
		}
		if s := utils.FormatDate(d); !present[s] {
			cov.Missing = append(cov.Missing, s)
		}
	}
	return cov, nil
}

// Reconcile finds the missing dates of year for details.City and scrapes each
// one for a single night, saving it before moving on so an abort keeps the
// dates already recovered.
func (r *MissingDateReconciler) Reconcile(ctx context.Context, details entity.BookingDetails, year int) (ReconcileResult, error) {
	var result ReconcileResult

	missing, err := r.FindMissingDates(ctx, details.City, year)
	if err != nil {
		return result, err
	}
	result.Missing = missing

	for _, date := range missing {
		checkOut, err := utils.CheckOut(date, 1)
		if err != nil {
			return result, err
		}

		rows, err := r.days.ScrapeDay(ctx, details.Request(date, checkOut))
		if err != nil {
			return result, err
		}
		if len(rows) == 0 {
			r.logger.Warn("missing date still has no rows", zap.String("city", details.City), zap.String("date", date))
			continue
		}
		if err := r.rows.Save(ctx, rows); err != nil {
			return result, fmt.Errorf("failed to save rows for %s: %w", date, err)
		}
		result.Recovered = append(result.Recovered, date)
		result.Rows += len(rows)
	}

	r.logger.Info("reconciliation finished",
		zap.String("city", details.City),
		zap.Int("missing", len(result.Missing)),
		zap.Int("recovered", len(result.Recovered)),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}
