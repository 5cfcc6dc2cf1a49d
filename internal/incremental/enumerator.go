package incremental

import (
	"iter"
	"time"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
)

// Enumerator produces the ordered candidate units for one dataset run. It is
// lazy and restartable: every call to Units yields the full ascending
// sequence again, and the idempotency gate is what skips completed work.
type Enumerator struct {
	granularity model.Granularity
	start       time.Time
	end         time.Time
	// month/day restrictions from the request template, applied only at
	// daily granularity.
	months map[string]struct{}
	days   map[string]struct{}
}

// NewEnumerator builds an enumerator for the inclusive [start, end] range.
// months and days are two-digit strings from the normalized template.
func NewEnumerator(granularity model.Granularity, start, end time.Time, months, days []string) *Enumerator {
	return &Enumerator{
		granularity: granularity,
		start:       start,
		end:         end,
		months:      toSet(months),
		days:        toSet(days),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Bounds computes the effective scheduling window: start is Jan 1 of the
// earliest configured year, clamped forward by minDate when set; end is
// today shifted back by lagDays.
func Bounds(years []int, minDate *time.Time, lagDays int, now time.Time) (start, end time.Time) {
	startYear := now.Year()
	for i, y := range years {
		if i == 0 || y < startYear {
			startYear = y
		}
	}
	start = time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	if minDate != nil && minDate.After(start) {
		start = *minDate
	}
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -lagDays)
	return start, end
}

// Units yields the candidate units in strictly ascending chronological
// order.
func (e *Enumerator) Units() iter.Seq[model.TimeUnit] {
	switch e.granularity {
	case model.GranularityYearly:
		return e.yearly()
	case model.GranularityMonthly:
		return e.monthly()
	default:
		return e.daily()
	}
}

func (e *Enumerator) yearly() iter.Seq[model.TimeUnit] {
	return func(yield func(model.TimeUnit) bool) {
		for year := e.start.Year(); year <= e.end.Year(); year++ {
			if !yield(model.Yearly(year)) {
				return
			}
		}
	}
}

func (e *Enumerator) monthly() iter.Seq[model.TimeUnit] {
	return func(yield func(model.TimeUnit) bool) {
		for year := e.start.Year(); year <= e.end.Year(); year++ {
			for month := 1; month <= 12; month++ {
				if year == e.start.Year() && month < int(e.start.Month()) {
					continue
				}
				if year == e.end.Year() && month > int(e.end.Month()) {
					break
				}
				if !yield(model.Monthly(year, month)) {
					return
				}
			}
		}
	}
}

func (e *Enumerator) daily() iter.Seq[model.TimeUnit] {
	return func(yield func(model.TimeUnit) bool) {
		for d := e.start; !d.After(e.end); d = d.AddDate(0, 0, 1) {
			if _, ok := e.months[d.Format("01")]; !ok {
				continue
			}
			if _, ok := e.days[d.Format("02")]; !ok {
				continue
			}
			if !yield(model.DailyFromDate(d)) {
				return
			}
		}
	}
}
