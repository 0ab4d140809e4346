package transactions

import (
	"net/url"
	"strconv"
	"time"
)

// Filter narrows transactions by date and amount. Bounds are inclusive;
// nil means unbounded.
type Filter struct {
	From *time.Time
	UpTo *time.Time
	Min  *float64
	Max  *float64
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseFilter reads the date, from, upTo, min and max query parameters.
// date selects one whole day and cannot be combined with from or upTo.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	date, from, upTo := q.Get("date"), q.Get("from"), q.Get("upTo")
	if date != "" && (from != "" || upTo != "") {
		return Filter{}, invalid(CauseDateWithRange)
	}

	if date != "" {
		day, ok := parseDate(date)
		if !ok {
			return Filter{}, invalid(CauseInvalidDate)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		end := start.Add(24*time.Hour - time.Microsecond)
		f.From, f.UpTo = &start, &end
	}
	if from != "" {
		t, ok := parseDate(from)
		if !ok {
			return Filter{}, invalid(CauseInvalidDate)
		}
		f.From = &t
	}
	if upTo != "" {
		t, ok := parseDate(upTo)
		if !ok {
			return Filter{}, invalid(CauseInvalidDate)
		}
		f.UpTo = &t
	}

	var err error
	if f.Min, err = parseBound(q.Get("min")); err != nil {
		return Filter{}, err
	}
	if f.Max, err = parseBound(q.Get("max")); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseBound(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalid(CauseInvalidAmount)
	}
	return &v, nil
}

// Match reports whether t satisfies every bound.
func (f Filter) Match(t Transaction) bool {
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.UpTo != nil && t.Date.After(*f.UpTo) {
		return false
	}
	if f.Min != nil && t.Amount < *f.Min {
		return false
	}
	if f.Max != nil && t.Amount > *f.Max {
		return false
	}
	return true
}
