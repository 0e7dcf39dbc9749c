package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckOut(t *testing.T) {
	cases := []struct {
		checkIn string
		nights  int
		expect  string
	}{
		{checkIn: "2024-07-05", nights: 1, expect: "2024-07-06"},
		{checkIn: "2024-01-31", nights: 1, expect: "2024-02-01"},
		{checkIn: "2024-02-28", nights: 1, expect: "2024-02-29"},
		{checkIn: "2023-12-31", nights: 3, expect: "2024-01-03"},
		{checkIn: "2024-07-05", nights: 0, expect: "2024-07-05"},
		{checkIn: "2024-07-05", nights: -5, expect: "2024-06-30"},
	}

	for _, test := range cases {
		got, err := CheckOut(test.checkIn, test.nights)
		require.NoError(t, err)
		require.Equal(t, test.expect, got)
	}

	_, err := CheckOut("07/05/2024", 1)
	require.Error(t, err)
}

func TestLastDayOfMonth(t *testing.T) {
	require.Equal(t, 31, LastDayOfMonth(2024, time.January))
	require.Equal(t, 29, LastDayOfMonth(2024, time.February))
	require.Equal(t, 28, LastDayOfMonth(2023, time.February))
	require.Equal(t, 30, LastDayOfMonth(2024, time.April))
	require.Equal(t, 31, LastDayOfMonth(2024, time.December))

	dates := MonthDates(2024, time.February)
	require.Len(t, dates, 29)
	require.Equal(t, "2024-02-01", FormatDate(dates[0]))
	require.Equal(t, "2024-02-29", FormatDate(dates[28]))
}

func TestHasElapsed(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-07-05 20:00 UTC is already 2024-07-06 in Tokyo.
	now := time.Date(2024, 7, 5, 20, 0, 0, 0, time.UTC)

	require.True(t, HasElapsed(Date(2024, 7, 4), now, time.UTC))
	require.False(t, HasElapsed(Date(2024, 7, 5), now, time.UTC))
	require.False(t, HasElapsed(Date(2024, 7, 6), now, time.UTC))

	require.True(t, HasElapsed(Date(2024, 7, 5), now, tokyo))
	require.False(t, HasElapsed(Date(2024, 7, 6), now, tokyo))
}

func TestExpectedDays(t *testing.T) {
	today := Date(2024, 7, 5)

	require.Equal(t, 27, ExpectedDays(2024, time.July, today))
	require.Equal(t, 31, ExpectedDays(2024, time.August, today))
	require.Equal(t, 30, ExpectedDays(2024, time.June, today))
	require.Equal(t, 31, ExpectedDays(2025, time.July, today))
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2024-07")
	require.NoError(t, err)
	require.Equal(t, 2024, year)
	require.Equal(t, time.July, month)

	_, _, err = ParseMonth("2024-13")
	require.Error(t, err)
	require.Equal(t, "2024-07", FormatMonth(2024, time.July))
}

func FuzzCheckOutDate(f *testing.F) {
	f.Add(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC).Unix(), 1)
	f.Add(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC).Unix(), 2)
	f.Add(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC).Unix(), -3)
	f.Add(time.Now().Unix(), 0)

	f.Fuzz(func(t *testing.T, unix int64, nights int) {
		if nights > 10000 || nights < -10000 {
			t.Skip()
		}
		checkIn := time.Unix(unix, 0).UTC()
		if checkIn.Year() < 1 || checkIn.Year() > 9999 {
			t.Skip()
		}
		checkIn = Date(checkIn.Year(), checkIn.Month(), checkIn.Day())
		checkOut := CheckOutDate(checkIn, nights)
		if got := CheckOutDate(checkOut, -nights); !got.Equal(checkIn) {
			t.Errorf("CheckOutDate(CheckOutDate(%v, %d), %d) = %v", checkIn, nights, -nights, got)
		}
	})
}
