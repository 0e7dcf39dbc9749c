package chromedp_headers

import (
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
)

func TestFilterHeaders(t *testing.T) {
	got := FilterHeaders(network.Headers{
		":authority":            "www.booking.com",
		"Content-Length":        "1234",
		"content-type":          "application/json",
		"X-Booking-Csrf-Token":  "token",
		"X-Booking-Pageview-Id": "pv",
		"Origin":                "https://www.booking.com",
	})

	require.Equal(t, map[string]string{
		"X-Booking-Csrf-Token":  "token",
		"X-Booking-Pageview-Id": "pv",
		"Origin":                "https://www.booking.com",
	}, got)
}
