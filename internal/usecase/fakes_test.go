package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/booking/bookingtest"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/pkg/utils"
)

// fakeSearch serves canned pages by offset. It is its own session.
type fakeSearch struct {
	mu       sync.Mutex
	pages    map[int]bookingtest.Page
	errs     map[int]error
	offsets  []int
	sessions int
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{pages: map[int]bookingtest.Page{}, errs: map[int]error{}}
}

func (f *fakeSearch) NewSession() repository.SearchSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions++
	return f
}

func (f *fakeSearch) Search(ctx context.Context, currency string, q booking.Query) (*booking.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offset := q.Variables.Input.Pagination.Offset

	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	page, ok := f.pages[offset]
	err := f.errs[offset]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return bookingtest.Page{}.Response(), nil
	}
	return page.Response(), nil
}

func (f *fakeSearch) requestedOffsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	offsets := slices.Clone(f.offsets)
	slices.Sort(offsets)
	return offsets
}

// dayScraperFunc adapts a function to DayScraper.
type dayScraperFunc func(ctx context.Context, req entity.ScrapeRequest) ([]entity.HotelRow, error)

func (f dayScraperFunc) ScrapeDay(ctx context.Context, req entity.ScrapeRequest) ([]entity.HotelRow, error) {
	return f(ctx, req)
}

// oneRowPerDay returns a single row stamped with the request's city and date.
func oneRowPerDay(asOf time.Time) dayScraperFunc {
	return func(ctx context.Context, req entity.ScrapeRequest) ([]entity.HotelRow, error) {
		name := req.City + " " + req.CheckIn
		return []entity.HotelRow{{Hotel: &name, Price: 100, Review: 8, PricePerReview: 12.5, City: req.City, Date: req.CheckIn, AsOf: asOf}}, nil
	}
}

// memoryRows is an in-memory HotelRowRepository.
type memoryRows struct {
	mu      sync.Mutex
	rows    []entity.HotelRow
	saves   int
	saveErr error
}

func (m *memoryRows) Save(ctx context.Context, rows []entity.HotelRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memoryRows) batch(asOf time.Time) []entity.HotelRow {
	day := utils.FormatDate(asOf.UTC())
	var out []entity.HotelRow
	for _, r := range m.rows {
		if utils.FormatDate(r.AsOf.UTC()) == day {
			out = append(out, r)
		}
	}
	return out
}

func (m *memoryRows) CountDatesByMonth(ctx context.Context, city string, asOf time.Time) ([]entity.MonthCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dates := map[string]map[string]bool{}
	for _, r := range m.batch(asOf) {
		if r.City != city {
			continue
		}
		month := r.Date[:7]
		if dates[month] == nil {
			dates[month] = map[string]bool{}
		}
		dates[month][r.Date] = true
	}

	var counts []entity.MonthCount
	for month, set := range dates {
		counts = append(counts, entity.MonthCount{Month: month, Count: len(set)})
	}
	slices.SortFunc(counts, func(a, b entity.MonthCount) int {
		return strings.Compare(a.Month, b.Month)
	})
	return counts, nil
}

func (m *memoryRows) FindDatesInMonth(ctx context.Context, city, month string, asOf time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dates []string
	for _, r := range m.batch(asOf) {
		if r.City == city && r.Date[:7] == month {
			dates = append(dates, r.Date)
		}
	}
	slices.Sort(dates)
	return slices.Compact(dates), nil
}

func (m *memoryRows) Close() error { return nil }

// storeDates adds one row per stay date, retrieved at asOf.
func (m *memoryRows) storeDates(city string, asOf time.Time, dates ...string) {
	for _, d := range dates {
		m.rows = append(m.rows, entity.HotelRow{City: city, Date: d, AsOf: asOf})
	}
}

type memoryQueue struct {
	mu   sync.Mutex
	jobs []*entity.ScrapeJob
}

func (q *memoryQueue) Push(ctx context.Context, job *entity.ScrapeJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryQueue) Pop(ctx context.Context) (*entity.ScrapeJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, repository.ErrQueueEmpty
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *memoryQueue) Size(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

type memorySubmitted struct {
	mu   sync.Mutex
	keys map[string]time.Duration
}

func newMemorySubmitted() *memorySubmitted {
	return &memorySubmitted{keys: map[string]time.Duration{}}
}

func (s *memorySubmitted) MarkSubmitted(ctx context.Context, jobID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[jobID] = expiry
	return nil
}

func (s *memorySubmitted) IsSubmitted(ctx context.Context, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[jobID]
	return ok, nil
}

func (s *memorySubmitted) RemoveSubmitted(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, jobID)
	return nil
}

type memoryStates struct {
	mu       sync.Mutex
	statuses map[string]entity.JobStatus
	history  []entity.JobState
}

func newMemoryStates() *memoryStates {
	return &memoryStates{statuses: map[string]entity.JobStatus{}}
}

func (s *memoryStates) SetState(ctx context.Context, status *entity.JobStatus, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.ID] = *status
	s.history = append(s.history, status.State)
	return nil
}

func (s *memoryStates) GetState(ctx context.Context, jobID string) (*entity.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[jobID]
	if !ok {
		return nil, repository.ErrJobStateNotFound
	}
	return &status, nil
}
