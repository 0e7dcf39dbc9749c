package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/pkg/utils"
)

const schema = `
	CREATE TABLE IF NOT EXISTS hotel_prices (
		id               BIGSERIAL PRIMARY KEY,
		hotel            TEXT,
		review           DOUBLE PRECISION,
		price            DOUBLE PRECISION,
		location         TEXT,
		price_per_review DOUBLE PRECISION,
		city             TEXT NOT NULL,
		region           TEXT NOT NULL DEFAULT '',
		date             DATE NOT NULL,
		as_of            TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS hotel_prices_city_as_of_idx ON hotel_prices (city, as_of);
`

var hotelRowColumns = []string{
	"hotel", "review", "price", "location", "price_per_review", "city", "region", "date", "as_of",
}

// HotelRowRepoImpl implements repository.HotelRowRepository on PostgreSQL.
type HotelRowRepoImpl struct {
	db *pgxpool.Pool
}

// Connect opens a pool for connString and makes sure the table exists.
func Connect(ctx context.Context, connString string) (*HotelRowRepoImpl, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	repo := NewHotelRowRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func NewHotelRowRepo(db *pgxpool.Pool) *HotelRowRepoImpl {
	return &HotelRowRepoImpl{db: db}
}

func (r *HotelRowRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create hotel_prices: %w", err)
	}
	return nil
}

// Save appends rows with COPY. Non-finite floats are written as NULL.
func (r *HotelRowRepoImpl) Save(ctx context.Context, rows []entity.HotelRow) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		date, err := utils.ParseDate(row.Date)
		if err != nil {
			return fmt.Errorf("row %d has invalid stay date: %w", i, err)
		}
		values[i] = []any{
			row.Hotel,
			nullFloat(row.Review),
			nullFloat(row.Price),
			row.Location,
			nullFloat(row.PricePerReview),
			row.City,
			row.Region,
			date,
			row.AsOf,
		}
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"hotel_prices"}, hotelRowColumns, pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("failed to copy %d rows: %w", len(rows), err)
	}
	return nil
}

func (r *HotelRowRepoImpl) CountDatesByMonth(ctx context.Context, city string, asOf time.Time) ([]entity.MonthCount, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM') AS month, COUNT(DISTINCT date)
		FROM hotel_prices
		WHERE city = $1 AND (as_of AT TIME ZONE 'UTC')::date = $2::date
		GROUP BY month
		ORDER BY month;
	`
	rows, err := r.db.Query(ctx, query, city, utils.FormatDate(asOf.UTC()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []entity.MonthCount
	for rows.Next() {
		var mc entity.MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, mc)
	}
	return counts, rows.Err()
}

func (r *HotelRowRepoImpl) FindDatesInMonth(ctx context.Context, city, month string, asOf time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT to_char(date, 'YYYY-MM-DD') AS day
		FROM hotel_prices
		WHERE city = $1 AND to_char(date, 'YYYY-MM') = $2 AND (as_of AT TIME ZONE 'UTC')::date = $3::date
		ORDER BY day;
	`
	rows, err := r.db.Query(ctx, query, city, month, utils.FormatDate(asOf.UTC()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *HotelRowRepoImpl) Close() error {
	r.db.Close()
	return nil
}

func nullFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
