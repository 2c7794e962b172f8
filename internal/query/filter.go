// Package query normalizes raw ledger query inputs into validated predicates.
// Validation happens once here, at the boundary; everything downstream works
// with typed values.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validation failures. Handlers map these to 400.
var (
	// ErrBadDate indicates an unparsable date bound.
	ErrBadDate = errors.New("invalid date")
	// ErrBadPage indicates invalid pagination parameters.
	ErrBadPage = errors.New("invalid pagination")
)

// Pagination defaults.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// Filter is the normalized representation of a caller's date/category filter.
// Nil bounds mean "unbounded" on that side. An inverted range (start after
// end) is deliberately not rejected; it simply selects nothing.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	Categories []string
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f.Start == nil && f.End == nil && len(f.Categories) == 0
}

// Page holds validated pagination parameters.
type Page struct {
	Skip  int
	Limit int
}

// ParseFilter builds a Filter from raw query string inputs.
// Dates are accepted as RFC 3339 date-times or plain dates (2006-01-02).
// Categories arrive as a single comma-delimited string; segments are trimmed
// and empty segments dropped. Order of categories is preserved but only
// membership matters.
func ParseFilter(rawStart, rawEnd, rawCategories string) (Filter, error) {
	var f Filter

	if rawStart != "" {
		t, err := parseDate(rawStart)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: start_date %q", ErrBadDate, rawStart)
		}
		f.Start = &t
	}

	if rawEnd != "" {
		t, err := parseDate(rawEnd)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: end_date %q", ErrBadDate, rawEnd)
		}
		f.End = &t
	}

	f.Categories = SplitCategories(rawCategories)

	return f, nil
}

// SplitCategories splits a comma-delimited category string, trimming
// whitespace and dropping empty segments.
func SplitCategories(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// ParsePage builds a Page from raw skip/limit inputs.
// Absent values fall back to DefaultSkip/DefaultLimit. Negative values are
// rejected rather than silently treated as zero or unbounded. A positive
// maxLimit clamps the requested limit.
func ParsePage(rawSkip, rawLimit string, maxLimit int) (Page, error) {
	p := Page{Skip: DefaultSkip, Limit: DefaultLimit}

	if rawSkip != "" {
		n, err := strconv.Atoi(rawSkip)
		if err != nil {
			return Page{}, fmt.Errorf("%w: skip %q", ErrBadPage, rawSkip)
		}
		if n < 0 {
			return Page{}, fmt.Errorf("%w: skip must not be negative", ErrBadPage)
		}
		p.Skip = n
	}

	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil {
			return Page{}, fmt.Errorf("%w: limit %q", ErrBadPage, rawLimit)
		}
		if n < 0 {
			return Page{}, fmt.Errorf("%w: limit must not be negative", ErrBadPage)
		}
		p.Limit = n
	}

	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	return p, nil
}

// dateLayouts are the accepted date formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
