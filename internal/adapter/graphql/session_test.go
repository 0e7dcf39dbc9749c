package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/booking/bookingtest"
	"github.com/user/hotel-scraper/internal/entity"
)

var tokyoRequest = entity.ScrapeRequest{
	City:     "Tokyo",
	Country:  "Japan",
	CheckIn:  "2024-08-01",
	CheckOut: "2024-08-02",
	Currency: "JPY",
	Adults:   2,
	Rooms:    1,
}

func newTestFactory(t *testing.T, srv *httptest.Server, headers map[string]string) *SessionFactory {
	t.Helper()
	return NewSessionFactory(Options{
		BaseURL:   srv.URL,
		Path:      "/dml/graphql",
		UserAgent: "test-agent",
		Headers:   headers,
	}, nil, zaptest.NewLogger(t))
}

func TestSessionSearch(t *testing.T) {
	page := bookingtest.PageFor(tokyoRequest, 1, bookingtest.Hotel("Hotel A", 12000, 8.1, "JPY", "Shinjuku"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/dml/graphql", r.URL.Path)
		assert.Equal(t, "JPY", r.URL.Query().Get("selected_currency"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "abc", r.Header.Get("X-Booking-Csrf-Token"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var q booking.Query
		assert.NoError(t, json.Unmarshal(body, &q))
		assert.Equal(t, booking.OperationName, q.OperationName)
		assert.Equal(t, 100, q.Variables.Input.Pagination.Offset)

		w.Header().Set("Content-Type", "application/json")
		w.Write(page.JSON())
	}))
	defer srv.Close()

	session := newTestFactory(t, srv, map[string]string{"X-Booking-Csrf-Token": "abc"}).NewSession()
	resp, err := session.Search(context.Background(), "JPY", booking.BuildQuery(tokyoRequest, 100))
	require.NoError(t, err)

	total, ok := resp.TotalResults()
	require.True(t, ok)
	require.Equal(t, 1, total)
	city, _ := resp.City()
	require.Equal(t, "Tokyo", city)
}

func TestSessionSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFactory(t, srv, nil).NewSession().Search(context.Background(), "JPY", booking.BuildQuery(tokyoRequest, 0))
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestSessionSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>captcha</html>"))
	}))
	defer srv.Close()

	_, err := newTestFactory(t, srv, nil).NewSession().Search(context.Background(), "JPY", booking.BuildQuery(tokyoRequest, 0))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnexpectedStatus)
}

func TestSessionSearchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bookingtest.PageFor(tokyoRequest, 0).JSON())
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFactory(t, srv, nil).NewSession().Search(ctx, "JPY", booking.BuildQuery(tokyoRequest, 0))
	require.ErrorIs(t, err, context.Canceled)
}
