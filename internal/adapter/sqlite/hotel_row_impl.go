package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/pkg/utils"
)

//go:embed schema.sql
var schema string

// HotelRowRepoImpl implements repository.HotelRowRepository on a SQLite file.
// Stay dates are stored as "2006-01-02" text; as_of_date holds the UTC
// calendar day of the retrieval so batch lookups stay index friendly.
type HotelRowRepoImpl struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*HotelRowRepoImpl, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &HotelRowRepoImpl{db: db}, nil
}

func (r *HotelRowRepoImpl) Save(ctx context.Context, rows []entity.HotelRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hotel_prices (hotel, review, price, location, price_per_review, city, region, date, as_of, as_of_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := utils.ParseDate(row.Date); err != nil {
			return fmt.Errorf("row %d has invalid stay date: %w", i, err)
		}
		asOf := row.AsOf.UTC()
		_, err := stmt.ExecContext(ctx,
			row.Hotel,
			nullFloat(row.Review),
			nullFloat(row.Price),
			row.Location,
			nullFloat(row.PricePerReview),
			row.City,
			row.Region,
			row.Date,
			asOf.Format(time.RFC3339Nano),
			utils.FormatDate(asOf),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (r *HotelRowRepoImpl) CountDatesByMonth(ctx context.Context, city string, asOf time.Time) ([]entity.MonthCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(date, 1, 7) AS month, COUNT(DISTINCT date)
		FROM hotel_prices
		WHERE city = ? AND as_of_date = ?
		GROUP BY month
		ORDER BY month`,
		city, utils.FormatDate(asOf.UTC()),
	)
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT date
		FROM hotel_prices
		WHERE city = ? AND substr(date, 1, 7) = ? AND as_of_date = ?
		ORDER BY date`,
		city, month, utils.FormatDate(asOf.UTC()),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *HotelRowRepoImpl) Close() error {
	return r.db.Close()
}

func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
