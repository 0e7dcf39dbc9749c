package entity

// ScrapeRequest is one concrete search: a city and a stay window for a given
// occupancy and currency. Dates use the "2006-01-02" layout.
type ScrapeRequest struct {
	City      string
	Country   string
	CheckIn   string
	CheckOut  string
	Currency  string
	Adults    int
	Rooms     int
	Children  int
	HotelOnly bool
}

// MissingRequired reports the name of the first empty field a search cannot
// run without, or "" when the request is complete.
func (r ScrapeRequest) MissingRequired() string {
	switch {
	case r.City == "":
		return "city"
	case r.CheckIn == "":
		return "check_in"
	case r.CheckOut == "":
		return "check_out"
	case r.Currency == "":
		return "currency"
	}
	return ""
}

// BookingDetails is the fixed booking profile a range of daily requests is built from.
type BookingDetails struct {
	City      string `json:"city"`
	Country   string `json:"country"`
	Currency  string `json:"currency"`
	Adults    int    `json:"adults"`
	Rooms     int    `json:"rooms"`
	Children  int    `json:"children"`
	HotelOnly bool   `json:"hotel_only"`
}

// Request builds the ScrapeRequest for one stay window.
func (d BookingDetails) Request(checkIn, checkOut string) ScrapeRequest {
	return ScrapeRequest{
		City:      d.City,
		Country:   d.Country,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Currency:  d.Currency,
		Adults:    d.Adults,
		Rooms:     d.Rooms,
		Children:  d.Children,
		HotelOnly: d.HotelOnly,
	}
}

// WithCity returns a copy of the profile for another city.
func (d BookingDetails) WithCity(city string) BookingDetails {
	d.City = city
	return d
}
