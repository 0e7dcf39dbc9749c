package repository

import (
	"context"

	"github.com/user/hotel-scraper/internal/booking"
)

// SearchSession issues search queries over one reusable HTTP client.
// A session serves the pages of a single day's scrape and may be used concurrently.
type SearchSession interface {
	// Search POSTs one query and decodes the response. Transport failures, non-200
	// statuses and undecodable bodies are returned as errors.
	Search(ctx context.Context, currency string, query booking.Query) (*booking.Response, error)
}

// SearchSessionFactory hands out independent sessions so concurrent days never
// share connections.
type SearchSessionFactory interface {
	NewSession() SearchSession
}
