package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the calendar-day layout used by filter bounds
const DateLayout = "2006-01-02"

// Filter selects complaint rows. Zero date bounds are unbounded; both bounds are inclusive.
// A select-all toggle or an empty list accepts every value of that field.
type Filter struct {
	From              time.Time
	To                time.Time
	Categories        []string
	AllCategories     bool
	Municipalities    []string
	AllMunicipalities bool
	Severities        []string
	AllSeverities     bool
}

// filterJSON is the wire form of Filter with bounds as DateLayout strings
type filterJSON struct {
	From              string   `json:"from,omitempty"`
	To                string   `json:"to,omitempty"`
	Categories        []string `json:"categories,omitempty"`
	AllCategories     bool     `json:"all_categories"`
	Municipalities    []string `json:"municipalities,omitempty"`
	AllMunicipalities bool     `json:"all_municipalities"`
	Severities        []string `json:"severities,omitempty"`
	AllSeverities     bool     `json:"all_severities"`
}

// MarshalJSON implements json.Marshaler
func (f Filter) MarshalJSON() ([]byte, error) {
	v := filterJSON{
		Categories:        f.Categories,
		AllCategories:     f.AllCategories,
		Municipalities:    f.Municipalities,
		AllMunicipalities: f.AllMunicipalities,
		Severities:        f.Severities,
		AllSeverities:     f.AllSeverities,
	}
	if !f.From.IsZero() {
		v.From = f.From.Format(DateLayout)
	}
	if !f.To.IsZero() {
		v.To = f.To.Format(DateLayout)
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Filter) UnmarshalJSON(data []byte) error {
	var v filterJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return goerr.Wrap(err, "invalid filter", goerr.T(ErrTagInvalidRequest))
	}

	from, err := ParseDate(v.From)
	if err != nil {
		return err
	}
	to, err := ParseDate(v.To)
	if err != nil {
		return err
	}

	*f = Filter{
		From:              from,
		To:                to,
		Categories:        v.Categories,
		AllCategories:     v.AllCategories,
		Municipalities:    v.Municipalities,
		AllMunicipalities: v.AllMunicipalities,
		Severities:        v.Severities,
		AllSeverities:     v.AllSeverities,
	}
	return nil
}

// Validate checks that the date bounds are ordered
func (f Filter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && TruncateDay(f.To).Before(TruncateDay(f.From)) {
		return goerr.New("end date is before start date",
			goerr.V("from", f.From.Format(DateLayout)),
			goerr.V("to", f.To.Format(DateLayout)),
			goerr.T(ErrTagInvalidRequest))
	}
	return nil
}

// Match reports whether the row satisfies every condition
func (f Filter) Match(c *Complaint) bool {
	if c == nil {
		return false
	}

	day := c.Day()
	if !f.From.IsZero() && day.Before(TruncateDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(TruncateDay(f.To)) {
		return false
	}
	if !f.AllCategories && !contains(f.Categories, c.Category) {
		return false
	}
	if !f.AllMunicipalities && !contains(f.Municipalities, c.Municipality) {
		return false
	}
	if !f.AllSeverities && !contains(f.Severities, c.Severity) {
		return false
	}
	return true
}

// Apply returns the matching rows in their original order. The input is not modified.
func (f Filter) Apply(rows []*Complaint) []*Complaint {
	result := make([]*Complaint, 0, len(rows))
	for _, row := range rows {
		if f.Match(row) {
			result = append(result, row)
		}
	}
	return result
}

// FromLabel formats the lower bound for display, "start" if unbounded
func (f Filter) FromLabel() string {
	if f.From.IsZero() {
		return "start"
	}
	return f.From.Format(DateLayout)
}

// ToLabel formats the upper bound for display, "end" if unbounded
func (f Filter) ToLabel() string {
	if f.To.IsZero() {
		return "end"
	}
	return f.To.Format(DateLayout)
}

// contains treats an empty accepted set as "accept all". Values match exactly, the way
// Table lists them.
func contains(accepted []string, v string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if a == v {
			return true
		}
	}
	return false
}

// ParseDate parses a filter bound in DateLayout. Empty input is unbounded.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid date, expected YYYY-MM-DD",
			goerr.V("value", v),
			goerr.T(ErrTagInvalidRequest))
	}
	return t, nil
}
