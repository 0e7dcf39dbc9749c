package booking_test

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/booking/bookingtest"
)

func decodeObject(t testing.TB, obj any) *booking.Response {
	body, err := json.Marshal(obj)
	require.NoError(t, err)
	resp, err := booking.DecodeResponse(body)
	require.NoError(t, err)
	return resp
}

func TestExtractProperties(t *testing.T) {
	resp := osakaPage(2).Response()
	results, ok := resp.Results()
	require.True(t, ok)

	acc := booking.NewAccumulator()
	booking.ExtractProperties(acc, 0, results)

	rows := acc.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, "Hotel A", *rows[0].Hotel)
	require.Equal(t, 8.5, rows[0].Review)
	require.Equal(t, 100.0, rows[0].Price)
	require.Equal(t, "Namba", *rows[0].Location)
	require.Equal(t, "Hotel B", *rows[1].Hotel)
	require.Equal(t, 150.0, rows[1].Price)
}

func TestExtractPropertyDegradesPerField(t *testing.T) {
	resp := decodeObject(t, map[string]any{
		"data": map[string]any{"searchQueries": map[string]any{"search": map[string]any{
			"results": []any{
				map[string]any{
					"displayName":       map[string]any{"text": "Partial Hotel"},
					"basicPropertyData": map[string]any{"reviewScore": "not an object"},
					"blocks":            []any{},
					"location":          map[string]any{"displayLocation": 42},
				},
				map[string]any{
					"displayName":       "flat string",
					"basicPropertyData": map[string]any{"reviewScore": map[string]any{"score": "7.5"}},
					"blocks":            []any{map[string]any{"finalPrice": map[string]any{"amount": 99.5}}},
				},
				nil,
				"garbage",
			},
		}}},
	})

	results, ok := resp.Results()
	require.True(t, ok)
	require.Len(t, results, 4)

	acc := booking.NewAccumulator()
	booking.ExtractProperties(acc, 0, results)
	rows := acc.Rows()
	require.Len(t, rows, 4)

	require.Equal(t, "Partial Hotel", *rows[0].Hotel)
	require.True(t, math.IsNaN(rows[0].Review))
	require.True(t, math.IsNaN(rows[0].Price))
	require.Nil(t, rows[0].Location)

	require.Nil(t, rows[1].Hotel)
	require.Equal(t, 7.5, rows[1].Review)
	require.Equal(t, 99.5, rows[1].Price)

	for _, row := range rows[2:] {
		require.Nil(t, row.Hotel)
		require.Nil(t, row.Location)
		require.True(t, math.IsNaN(row.Review))
		require.True(t, math.IsNaN(row.Price))
	}
}

func TestAccumulatorConcurrentPages(t *testing.T) {
	acc := booking.NewAccumulator()
	sizes := []int{100, 100, 100, 37}

	var wg sync.WaitGroup
	var expected int
	for i, size := range sizes {
		expected += size
		props := make([]bookingtest.Property, size)
		for j := range props {
			props[j] = bookingtest.Hotel("h", float64(i), 8, "USD", "x")
		}
		results, ok := bookingtest.PageFor(osakaRequest, 337, props...).Response().Results()
		require.True(t, ok)

		wg.Add(1)
		go func(offset int, results []booking.Node) {
			defer wg.Done()
			booking.ExtractProperties(acc, offset, results)
		}(i*booking.PageSize, results)
	}
	wg.Wait()

	require.Equal(t, len(sizes), acc.Frames())
	rows := acc.Rows()
	require.Len(t, rows, expected)
	// frames come back ordered by offset whatever order they landed in
	require.Equal(t, 0.0, rows[0].Price)
	require.Equal(t, 3.0, rows[len(rows)-1].Price)
}

func TestAccumulatorEmpty(t *testing.T) {
	acc := booking.NewAccumulator()
	require.Nil(t, acc.Rows())

	booking.ExtractProperties(acc, 0, nil)
	require.Equal(t, 1, acc.Frames())
	require.Nil(t, acc.Rows())
}

func TestDecodeResponseRejectsMalformed(t *testing.T) {
	_, err := booking.DecodeResponse([]byte(`<html>blocked</html>`))
	require.Error(t, err)

	_, err = booking.DecodeResponse([]byte(`[1,2,3]`))
	require.Error(t, err)

	resp, err := booking.DecodeResponse([]byte(`{"errors":[{"message":"rate limited"}]}`))
	require.NoError(t, err)
	require.Equal(t, []string{"rate limited"}, resp.Errors())
	require.False(t, resp.HasSearch())
}
