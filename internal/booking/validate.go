package booking

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/user/hotel-scraper/internal/entity"
)

// ErrParameterMismatch marks a response whose echoed search parameters differ from
// the request. Rows from such a response would be mislabeled, so callers must abort
// the whole run rather than retry or skip.
var ErrParameterMismatch = errors.New("search response does not match the requested parameters")

// MismatchError names the first parameter the server echoed differently.
type MismatchError struct {
	Field     string
	Requested string
	Returned  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: requested %q, response has %q", e.Field, e.Requested, e.Returned)
}

func (e *MismatchError) Unwrap() error {
	return ErrParameterMismatch
}

// Confirmed holds the search parameters as echoed back by the server.
type Confirmed struct {
	City      string
	Currency  string
	CheckIn   string
	CheckOut  string
	Adults    int
	Children  int
	Rooms     int
	HotelOnly bool
}

// Validate extracts the total result count and checks every echoed parameter against
// the request with strict equality. A missing or malformed count is treated as zero
// results, which is not an error. A missing echoed value is a mismatch.
func Validate(resp *Response, req entity.ScrapeRequest) (int, Confirmed, error) {
	total, ok := resp.TotalResults()
	if !ok || total <= 0 {
		return 0, Confirmed{}, nil
	}

	var c Confirmed
	c.City, _ = resp.City()
	c.Currency, _ = resp.Currency()
	c.CheckIn, _ = resp.CheckIn()
	c.CheckOut, _ = resp.CheckOut()

	adults, adultsOK := resp.Adults()
	children, childrenOK := resp.Children()
	rooms, roomsOK := resp.Rooms()
	c.Adults, c.Children, c.Rooms = adults, children, rooms
	c.HotelOnly = slices.Contains(resp.AppliedFilters(), HotelFilterID)

	checks := []struct {
		field     string
		requested string
		returned  string
		present   bool
	}{
		{"city", req.City, c.City, c.City != ""},
		{"currency", req.Currency, c.Currency, c.Currency != ""},
		{"check_in", req.CheckIn, c.CheckIn, c.CheckIn != ""},
		{"check_out", req.CheckOut, c.CheckOut, c.CheckOut != ""},
		{"adults", strconv.Itoa(req.Adults), strconv.Itoa(adults), adultsOK},
		{"children", strconv.Itoa(req.Children), strconv.Itoa(children), childrenOK},
		{"rooms", strconv.Itoa(req.Rooms), strconv.Itoa(rooms), roomsOK},
	}
	for _, check := range checks {
		if !check.present {
			return total, c, &MismatchError{Field: check.field, Requested: check.requested, Returned: ""}
		}
		if check.requested != check.returned {
			return total, c, &MismatchError{Field: check.field, Requested: check.requested, Returned: check.returned}
		}
	}

	if req.HotelOnly && !c.HotelOnly {
		return total, c, &MismatchError{Field: "hotel_filter", Requested: HotelFilterID, Returned: ""}
	}

	return total, c, nil
}
