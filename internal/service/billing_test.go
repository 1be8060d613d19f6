package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villamarea/internal/db"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpectedCheckoutDaytime(t *testing.T) {
	got, err := ExpectedCheckout(db.BookingDaytime, date(2026, 1, 10), date(2026, 1, 10), "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 10, 17, 0, 0, 0, time.UTC), got)
}

func TestExpectedCheckoutNighttime(t *testing.T) {
	got, err := ExpectedCheckout(db.BookingNighttime, date(2026, 1, 1), date(2026, 1, 2), "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC), got)
}

func TestExpectedCheckoutNighttimeSameDay(t *testing.T) {
	// A nighttime row with equal dates still ends the next morning.
	got, err := ExpectedCheckout(db.BookingNighttime, date(2026, 1, 1), date(2026, 1, 1), "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC), got)
}

func TestExpectedCheckoutTwentyTwoHours(t *testing.T) {
	got, err := ExpectedCheckout(db.BookingTwentyTwoHr, date(2026, 1, 1), date(2026, 1, 2), "14:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC), got)
}

func TestExpectedCheckoutUnknownType(t *testing.T) {
	_, err := ExpectedCheckout("weekend", date(2026, 1, 1), date(2026, 1, 2), "")
	assert.Error(t, err)
}

func TestOvertimeHours(t *testing.T) {
	expected := time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		actual time.Time
		want   int
	}{
		{"left early", expected.Add(-2 * time.Hour), 0},
		{"on time", expected, 0},
		{"one minute over", expected.Add(time.Minute), 1},
		{"exactly two hours", expected.Add(2 * time.Hour), 2},
		{"two and a half hours rounds up", expected.Add(2*time.Hour + 30*time.Minute), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OvertimeHours(expected, tt.actual))
		})
	}
}

// Nighttime stay ending 2026-01-02 06:00, guest leaves 08:30. 2.5 hours
// over bills as 3 whole hours, 1500 at the default hourly rate.
func TestNighttimeOvertimeCharge(t *testing.T) {
	expected, err := ExpectedCheckout(db.BookingNighttime, date(2026, 1, 1), date(2026, 1, 2), "")
	require.NoError(t, err)

	actual := time.Date(2026, 1, 2, 8, 30, 0, 0, time.UTC)
	hours := OvertimeHours(expected, actual)
	assert.Equal(t, 3, hours)
	assert.Equal(t, 1500, hours*500)
}

func TestBondReturn(t *testing.T) {
	assert.Equal(t, 1700, BondReturn(2000, 300))
	assert.Equal(t, 0, BondReturn(2000, 2000))
	assert.Equal(t, 0, BondReturn(2000, 3500))
	assert.Equal(t, 2000, BondReturn(2000, 0))
}

func TestStayUnits(t *testing.T) {
	assert.Equal(t, 1, StayUnits(date(2026, 1, 10), date(2026, 1, 10)))
	assert.Equal(t, 1, StayUnits(date(2026, 1, 10), date(2026, 1, 11)))
	assert.Equal(t, 3, StayUnits(date(2026, 1, 10), date(2026, 1, 13)))
}

func TestCombineDateTime(t *testing.T) {
	got, err := CombineDateTime(date(2026, 3, 5), "14:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 14, 45, 0, 0, time.UTC), got)

	got, err = CombineDateTime(date(2026, 3, 5), "")
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 5), got)

	_, err = CombineDateTime(date(2026, 3, 5), "25:99")
	assert.Error(t, err)
}
