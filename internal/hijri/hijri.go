// Package hijri converts Gregorian dates to the tabular Islamic calendar used
// in the footer of verse images. Local moon sighting differences are handled
// with a day offset applied before conversion.
package hijri

import (
	"fmt"
	"math"
	"time"
)

// Julian day numbers of 1970-01-01 and of 1 Muharram 1 AH (civil epoch).
const (
	unixEpochJDN  = 2440588
	hijriEpochJDN = 1948440
)

// MonthNames are the transliterated month names, indexed from 1.
var MonthNames = [...]string{
	"",
	"Muharram",
	"Safar",
	"Rabi' al-Awwal",
	"Rabi' al-Thani",
	"Jumada al-Awwal",
	"Jumada al-Thani",
	"Rajab",
	"Sha'ban",
	"Ramadan",
	"Shawwal",
	"Dhul-Qi'dah",
	"Dhul-Hijjah",
}

// Date is a day of the Islamic calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

// MonthName returns the transliterated month name.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return MonthNames[d.Month]
}

// String formats the date as "9th Ramadan, 1445AH".
func (d Date) String() string {
	return fmt.Sprintf("%d%s %s, %dAH", d.Day, OrdinalSuffix(d.Day), d.MonthName(), d.Year)
}

// FromGregorian converts the calendar day of t, shifted by offsetDays.
// Only the year, month and day of t are used.
func FromGregorian(t time.Time, offsetDays int) Date {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offsetDays)
	return fromJDN(int(day.Unix()/86400) + unixEpochJDN)
}

func fromJDN(jdn int) Date {
	year := floorDiv(30*(jdn-hijriEpochJDN)+10646, 10631)
	month := int(math.Ceil(float64(jdn-29-toJDN(year, 1, 1))/29.5)) + 1
	if month > 12 {
		month = 12
	}
	if month < 1 {
		month = 1
	}
	return Date{Year: year, Month: month, Day: jdn - toJDN(year, month, 1) + 1}
}

// toJDN returns the Julian day number of an Islamic date.
func toJDN(year, month, day int) int {
	return day +
		int(math.Ceil(29.5*float64(month-1))) +
		(year-1)*354 +
		floorDiv(3+11*year, 30) +
		hijriEpochJDN - 1
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// OrdinalSuffix returns the English ordinal suffix of n: st, nd, rd or th.
func OrdinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
