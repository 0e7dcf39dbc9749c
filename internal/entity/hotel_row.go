package entity

import "time"

// HotelRow mirrors one row of the `hotel_prices` table.
// Review and Price are NaN when the upstream entry did not carry them.
type HotelRow struct {
	Hotel          *string
	Review         float64
	Price          float64
	Location       *string
	PricePerReview float64
	City           string
	Region         string
	Date           string // stay date (check-in)
	AsOf           time.Time
}
