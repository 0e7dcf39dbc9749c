package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/pkg/utils"
)

// MonthRequest scrapes every remaining stay date of one month.
type MonthRequest struct {
	Details  entity.BookingDetails
	Year     int
	Month    time.Month
	StartDay int
	Nights   int
}

// SweepRequest scrapes every locality of every region for a range of months.
type SweepRequest struct {
	Details    entity.BookingDetails
	Regions    []entity.Region
	Year       int
	StartMonth time.Month
	EndMonth   time.Month
	Nights     int
}

// RangeOrchestrator runs the DayScraper over ranges of stay dates.
type RangeOrchestrator struct {
	days    DayScraper
	rows    repository.HotelRowRepository
	workers int
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewRangeOrchestrator creates an orchestrator running up to workers days at once.
// loc decides which dates have elapsed; nil means the local zone.
func NewRangeOrchestrator(days DayScraper, rows repository.HotelRowRepository, workers int, loc *time.Location, logger *zap.Logger) *RangeOrchestrator {
	if workers < 1 {
		workers = 1
	}
	return &RangeOrchestrator{
		days:    days,
		rows:    rows,
		workers: workers,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}
}

// ScrapeMonth scrapes each day from StartDay to the end of the month, skipping
// days that have already elapsed. Rows come back in ascending stay-date order.
func (o *RangeOrchestrator) ScrapeMonth(ctx context.Context, mr MonthRequest) ([]entity.HotelRow, error) {
	if mr.Month < time.January || mr.Month > time.December {
		return nil, fmt.Errorf("invalid month %d", mr.Month)
	}
	startDay := max(mr.StartDay, 1)

	now := o.now()
	last := utils.LastDayOfMonth(mr.Year, mr.Month)
	var reqs []entity.ScrapeRequest
	for day := startDay; day <= last; day++ {
		checkIn := utils.Date(mr.Year, mr.Month, day)
		if utils.HasElapsed(checkIn, now, o.loc) {
			continue
		}
		reqs = append(reqs, mr.Details.Request(
			utils.FormatDate(checkIn),
			utils.FormatDate(utils.CheckOutDate(checkIn, mr.Nights)),
		))
	}

	o.logger.Info("scraping month",
		zap.String("city", mr.Details.City),
		zap.String("month", utils.FormatMonth(mr.Year, mr.Month)),
		zap.Int("days", len(reqs)),
	)
	return o.runDays(ctx, reqs)
}

// ScrapeDates scrapes an explicit list of check-in dates in the given order.
func (o *RangeOrchestrator) ScrapeDates(ctx context.Context, details entity.BookingDetails, dates []string, nights int) ([]entity.HotelRow, error) {
	reqs := make([]entity.ScrapeRequest, 0, len(dates))
	for _, d := range dates {
		checkOut, err := utils.CheckOut(d, nights)
		if err != nil {
			return nil, fmt.Errorf("invalid check-in date %q: %w", d, err)
		}
		reqs = append(reqs, details.Request(d, checkOut))
	}
	return o.runDays(ctx, reqs)
}

// SweepRegions scrapes each locality month by month and saves every
// locality-month as soon as it completes, tagged with its region. It returns the
// number of rows saved.
func (o *RangeOrchestrator) SweepRegions(ctx context.Context, sr SweepRequest) (int, error) {
	if sr.StartMonth < time.January || sr.EndMonth > time.December || sr.StartMonth > sr.EndMonth {
		return 0, fmt.Errorf("invalid month range %d..%d", sr.StartMonth, sr.EndMonth)
	}

	var saved int
	for _, region := range sr.Regions {
		for _, locality := range region.Localities {
			for month := sr.StartMonth; month <= sr.EndMonth; month++ {
				rows, err := o.ScrapeMonth(ctx, MonthRequest{
					Details:  sr.Details.WithCity(locality),
					Year:     sr.Year,
					Month:    month,
					StartDay: 1,
					Nights:   sr.Nights,
				})
				if err != nil {
					return saved, err
				}
				if len(rows) == 0 {
					continue
				}

				for i := range rows {
					rows[i].Region = region.Name
				}
				if err := o.rows.Save(ctx, rows); err != nil {
					return saved, fmt.Errorf("failed to save %s %s: %w", locality, utils.FormatMonth(sr.Year, month), err)
				}
				saved += len(rows)
				o.logger.Info("saved locality month",
					zap.String("region", region.Name),
					zap.String("locality", locality),
					zap.String("month", utils.FormatMonth(sr.Year, month)),
					zap.Int("rows", len(rows)),
				)
			}
		}
	}
	return saved, nil
}

type dayTask struct {
	index int
	req   entity.ScrapeRequest
}

// runDays scrapes reqs on a bounded pool of workers. Results are joined in
// submission order. The first error cancels the days still in flight.
func (o *RangeOrchestrator) runDays(ctx context.Context, reqs []entity.ScrapeRequest) ([]entity.HotelRow, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]entity.HotelRow, len(reqs))
	taskQueue := make(chan dayTask)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for range min(o.workers, len(reqs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskQueue {
				if ctx.Err() != nil {
					continue
				}
				rows, err := o.days.ScrapeDay(ctx, task.req)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[task.index] = rows
			}
		}()
	}

submit:
	for i, req := range reqs {
		select {
		case taskQueue <- dayTask{index: i, req: req}:
		case <-ctx.Done():
			break submit
		}
	}
	close(taskQueue)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []entity.HotelRow
	for _, r := range results {
		rows = append(rows, r...)
	}
	return rows, nil
}
