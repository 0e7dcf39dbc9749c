package repository

import (
	"context"
	"time"

	"github.com/user/hotel-scraper/internal/entity"
)

// HotelRowRepository defines the interface for persisting extracted rows and reading
// back the stay-date coverage of a retrieval batch.
type HotelRowRepository interface {
	// Save appends rows. An empty slice is a no-op.
	Save(ctx context.Context, rows []entity.HotelRow) error
	// CountDatesByMonth returns, per stay month, the number of distinct stay dates
	// stored for city by rows retrieved on the UTC calendar day of asOf.
	CountDatesByMonth(ctx context.Context, city string, asOf time.Time) ([]entity.MonthCount, error)
	// FindDatesInMonth returns the distinct stay dates stored for city in month
	// ("2006-01") by rows retrieved on the UTC calendar day of asOf, ascending.
	FindDatesInMonth(ctx context.Context, city, month string, asOf time.Time) ([]string, error)
	Close() error
}
