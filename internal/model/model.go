package model

import (
	"fmt"
	"time"
)

// Granularity controls how a dataset's time range is partitioned into
// fetchable units.
type Granularity string

const (
	GranularityYearly  Granularity = "yearly"
	GranularityMonthly Granularity = "monthly"
	GranularityDaily   Granularity = "daily"
)

// Validate checks that the granularity is one of the supported values.
func (g Granularity) Validate() error {
	switch g {
	case GranularityYearly, GranularityMonthly, GranularityDaily:
		return nil
	}
	return fmt.Errorf("unsupported granularity %q", string(g))
}

// DateEncoding selects how a unit's date dimension is expressed in a
// provider request.
type DateEncoding string

const (
	// DateEncodingDiscrete enumerates year/month/day as separate list fields.
	DateEncodingDiscrete DateEncoding = "discrete"
	// DateEncodingRange emits a single inclusive "start/end" interval string.
	DateEncodingRange DateEncoding = "range"
)

// Validate checks that the encoding is one of the supported values.
func (e DateEncoding) Validate() error {
	switch e {
	case DateEncodingDiscrete, DateEncodingRange:
		return nil
	}
	return fmt.Errorf("unsupported date_encoding %q", string(e))
}

// TimeUnit is a single fetch granule: a year, a month of a year, or a
// calendar day. Month and Day are zero when the granularity doesn't set them.
type TimeUnit struct {
	Year  int
	Month int
	Day   int
}

// Yearly returns the unit covering a whole calendar year.
func Yearly(year int) TimeUnit {
	return TimeUnit{Year: year}
}

// Monthly returns the unit covering one month of a year.
func Monthly(year, month int) TimeUnit {
	return TimeUnit{Year: year, Month: month}
}

// Daily returns the unit covering a single calendar day.
func Daily(year, month, day int) TimeUnit {
	return TimeUnit{Year: year, Month: month, Day: day}
}

// DailyFromDate returns the daily unit for t's calendar date.
func DailyFromDate(t time.Time) TimeUnit {
	return TimeUnit{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Less orders units chronologically by (year, month, day), with unset
// components sorting before any set value.
func (u TimeUnit) Less(v TimeUnit) bool {
	if u.Year != v.Year {
		return u.Year < v.Year
	}
	if u.Month != v.Month {
		return u.Month < v.Month
	}
	return u.Day < v.Day
}

// Start returns the first calendar day the unit covers.
func (u TimeUnit) Start() time.Time {
	month, day := u.Month, u.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(u.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// End returns the last calendar day the unit covers. For monthly units this
// is the month's final day, leap years included.
func (u TimeUnit) End() time.Time {
	if u.Month == 0 {
		return time.Date(u.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	if u.Day == 0 {
		// day zero of the next month is the last day of this one
		return time.Date(u.Year, time.Month(u.Month)+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(u.Year, time.Month(u.Month), u.Day, 0, 0, 0, 0, time.UTC)
}

// String renders the unit as "2024", "2024-03" or "2024-03-15" depending on
// which components are set.
func (u TimeUnit) String() string {
	switch {
	case u.Day != 0:
		return fmt.Sprintf("%04d-%02d-%02d", u.Year, u.Month, u.Day)
	case u.Month != 0:
		return fmt.Sprintf("%04d-%02d", u.Year, u.Month)
	default:
		return fmt.Sprintf("%04d", u.Year)
	}
}
