package request

import (
	"time"

	"github.com/user/hotel-scraper/internal/entity"
)

type SubmitJobRequest struct {
	Kind      string `json:"kind"` // "month" or "missing"
	City      string `json:"city"`
	Country   string `json:"country"`
	Currency  string `json:"currency"`
	Adults    int    `json:"adults"`
	Rooms     int    `json:"rooms"`
	Children  int    `json:"children"`
	HotelOnly bool   `json:"hotel_only"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	StartDay  int    `json:"start_day"`
	Nights    int    `json:"nights"`
	Force     bool   `json:"force"`
}

// Job converts the request, defaulting occupancy to one adult in one room for one night.
func (r SubmitJobRequest) Job() *entity.ScrapeJob {
	adults, rooms, nights := r.Adults, r.Rooms, r.Nights
	if adults == 0 {
		adults = 1
	}
	if rooms == 0 {
		rooms = 1
	}
	if nights == 0 {
		nights = 1
	}

	return &entity.ScrapeJob{
		Kind: entity.JobKind(r.Kind),
		Details: entity.BookingDetails{
			City:      r.City,
			Country:   r.Country,
			Currency:  r.Currency,
			Adults:    adults,
			Rooms:     rooms,
			Children:  r.Children,
			HotelOnly: r.HotelOnly,
		},
		Year:     r.Year,
		Month:    time.Month(r.Month),
		StartDay: r.StartDay,
		Nights:   nights,
	}
}
