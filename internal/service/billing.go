package service

import (
	"fmt"
	"time"

	"villamarea/internal/db"
)

// Checkout cut-offs per booking type. Daytime stays end at 17:00 on the
// check-out date, nighttime stays at 06:00, 22-hour stays 22 hours after
// the actual check-in time.
const (
	daytimeEndHour   = 17
	nighttimeEndHour = 6
	twentyTwoHours   = 22 * time.Hour
)

// ExpectedCheckout derives the contractual checkout instant from the
// booking type and the stay window.
func ExpectedCheckout(bookingType string, checkInDate, checkOutDate time.Time, checkInTime string) (time.Time, error) {
	switch bookingType {
	case db.BookingDaytime:
		return atHour(checkOutDate, daytimeEndHour), nil
	case db.BookingNighttime:
		// The checkout date is the morning after the last night. A row
		// where both dates coincide still ends the next morning.
		end := checkOutDate
		if !end.After(checkInDate) {
			end = checkInDate.AddDate(0, 0, 1)
		}
		return atHour(end, nighttimeEndHour), nil
	case db.BookingTwentyTwoHr:
		start, err := CombineDateTime(checkInDate, checkInTime)
		if err != nil {
			return time.Time{}, err
		}
		return start.Add(twentyTwoHours), nil
	default:
		return time.Time{}, fmt.Errorf("unknown booking type %q", bookingType)
	}
}

// OvertimeHours returns the whole hours between expected and actual
// checkout, rounded up. Leaving early is not credited.
func OvertimeHours(expected, actual time.Time) int {
	if !actual.After(expected) {
		return 0
	}
	over := actual.Sub(expected)
	hours := int(over / time.Hour)
	if over%time.Hour > 0 {
		hours++
	}
	return hours
}

// BondReturn is the security bond minus damage charges, floored at zero.
func BondReturn(bond, damageCharges int) int {
	returned := bond - damageCharges
	if returned < 0 {
		return 0
	}
	return returned
}

// StayUnits is the number of billable stay units between the dates. A
// same-day (daytime) booking counts as one unit.
func StayUnits(checkInDate, checkOutDate time.Time) int {
	units := int(checkOutDate.Sub(checkInDate) / (24 * time.Hour))
	if units < 1 {
		units = 1
	}
	return units
}

// CombineDateTime attaches an "15:04" clock time to a date. An empty time
// means midnight.
func CombineDateTime(date time.Time, hhmm string) (time.Time, error) {
	if hhmm == "" {
		return date, nil
	}
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location()), nil
}

func atHour(date time.Time, hour int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
}
