// Package format renders money, durations and dates the way the booking
// screens display them.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency formats a US dollar amount with two decimals and thousands
// separators, e.g. "$1,234.50" or "-$14.29".
func Currency(amount float64) string {
	if amount < 0 {
		return "-$" + printer.Sprintf("%.2f", -amount)
	}
	return "$" + printer.Sprintf("%.2f", amount)
}

// Fixed2 formats a value with exactly two decimals and no grouping.
func Fixed2(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// Hours renders the time left until departure. Under a day only whole hours
// are shown; otherwise whole days plus the remaining whole hours.
func Hours(hours float64) string {
	if hours < 24 {
		return fmt.Sprintf("%d hours", int64(math.Floor(hours)))
	}

	days := int64(math.Floor(hours / 24))
	remaining := int64(math.Floor(math.Mod(hours, 24)))

	out := fmt.Sprintf("%d day", days)
	if days > 1 {
		out += "s"
	}
	if remaining > 0 {
		out += fmt.Sprintf(" %dh", remaining)
	}
	return out
}

// FlightDuration is the wall-clock difference between two instants as
// "<hours>h <minutes>m", both floored.
func FlightDuration(departure, arrival time.Time) string {
	diff := float64(arrival.Sub(departure).Milliseconds())
	hours := math.Floor(diff / float64(time.Hour/time.Millisecond))
	minutes := math.Floor(math.Mod(diff, float64(time.Hour/time.Millisecond)) / float64(time.Minute/time.Millisecond))
	return fmt.Sprintf("%dh %dm", int64(hours), int64(minutes))
}

// Date renders e.g. "Mar 1, 2025".
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Clock renders e.g. "09:05 AM".
func Clock(t time.Time) string {
	return t.Format("03:04 PM")
}
