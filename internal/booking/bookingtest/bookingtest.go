// Package bookingtest builds search responses for tests.
package bookingtest

import (
	"encoding/json"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/entity"
)

// Property is one result entry. Nil fields are left out of the JSON.
type Property struct {
	Name     *string
	Review   *float64
	Price    *float64
	Currency string
	Location *string
}

// Page describes a whole search response.
type Page struct {
	City       string
	Currency   string
	CheckIn    string
	CheckOut   string
	Adults     int
	Children   int
	Rooms      int
	HotelOnly  bool
	Total      int
	Properties []Property
}

// PageFor echoes req back faithfully.
func PageFor(req entity.ScrapeRequest, total int, props ...Property) Page {
	return Page{
		City:       req.City,
		Currency:   req.Currency,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Adults:     req.Adults,
		Children:   req.Children,
		Rooms:      req.Rooms,
		HotelOnly:  req.HotelOnly,
		Total:      total,
		Properties: props,
	}
}

// Hotel is a fully populated property priced in currency.
func Hotel(name string, price, review float64, currency, location string) Property {
	return Property{
		Name:     Ptr(name),
		Review:   Ptr(review),
		Price:    Ptr(price),
		Currency: currency,
		Location: Ptr(location),
	}
}

func Ptr[T any](v T) *T {
	return &v
}

func (p Property) object() map[string]any {
	obj := map[string]any{"__typename": "SearchResultProperty"}
	if p.Name != nil {
		obj["displayName"] = map[string]any{"text": *p.Name}
	}
	if p.Review != nil {
		obj["basicPropertyData"] = map[string]any{
			"reviewScore": map[string]any{"score": *p.Review},
		}
	}
	if p.Price != nil {
		obj["blocks"] = []any{
			map[string]any{
				"finalPrice": map[string]any{"amount": *p.Price, "currency": p.Currency},
			},
		}
	}
	if p.Location != nil {
		obj["location"] = map[string]any{"displayLocation": *p.Location}
	}
	return obj
}

// Object renders the page as the decoded JSON tree.
func (p Page) Object() map[string]any {
	results := make([]any, len(p.Properties))
	for i, prop := range p.Properties {
		results[i] = prop.object()
	}
	filters := []any{}
	if p.HotelOnly {
		filters = append(filters, map[string]any{"urlId": booking.HotelFilterID})
	}

	return map[string]any{
		"data": map[string]any{
			"searchQueries": map[string]any{
				"search": map[string]any{
					"pagination": map[string]any{
						"nbResultsPerPage": booking.PageSize,
						"nbResultsTotal":   p.Total,
					},
					"breadcrumbs": []any{
						map[string]any{"name": "Japan", "destType": "COUNTRY"},
						map[string]any{"name": p.City, "destType": booking.DestTypeCity},
					},
					"flexibleDatesConfig": map[string]any{
						"dateRangeCalendar": map[string]any{
							"checkin":  []any{p.CheckIn},
							"checkout": []any{p.CheckOut},
						},
					},
					"searchMeta": map[string]any{
						"nbAdults":   p.Adults,
						"nbChildren": p.Children,
						"nbRooms":    p.Rooms,
					},
					"appliedFilterOptions": filters,
					"results":              results,
				},
			},
		},
	}
}

// JSON renders the page as a response body.
func (p Page) JSON() []byte {
	body, err := json.Marshal(p.Object())
	if err != nil {
		panic(err)
	}
	return body
}

// Response decodes the page the way a client would.
func (p Page) Response() *booking.Response {
	resp, err := booking.DecodeResponse(p.JSON())
	if err != nil {
		panic(err)
	}
	return resp
}
