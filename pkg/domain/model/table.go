package model

import (
	"sort"
	"time"
)

// Table is the in-memory set of loaded complaints in source order
type Table struct {
	Rows []*Complaint
	// Missing is true when the source did not exist and an empty table was substituted
	Missing bool
}

// NewTable creates a table from rows
func NewTable(rows []*Complaint) *Table {
	return &Table{Rows: rows}
}

// EmptyTable returns the table substituted for a missing source
func EmptyTable() *Table {
	return &Table{Rows: []*Complaint{}, Missing: true}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Categories returns the distinct observed categories, sorted
func (t *Table) Categories() []string {
	return t.distinct(func(c *Complaint) string { return c.Category })
}

// Municipalities returns the distinct observed municipalities, sorted
func (t *Table) Municipalities() []string {
	return t.distinct(func(c *Complaint) string { return c.Municipality })
}

// Severities returns the distinct observed severity labels, sorted
func (t *Table) Severities() []string {
	return t.distinct(func(c *Complaint) string { return c.Severity })
}

func (t *Table) distinct(field func(*Complaint) string) []string {
	seen := make(map[string]struct{})
	values := []string{}
	if t == nil {
		return values
	}
	for _, row := range t.Rows {
		v := field(row)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// DateSpan returns the first and last calendar day present. ok is false for an empty table.
func (t *Table) DateSpan() (from, to time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	from = t.Rows[0].Day()
	to = from
	for _, row := range t.Rows[1:] {
		day := row.Day()
		if day.Before(from) {
			from = day
		}
		if day.After(to) {
			to = day
		}
	}
	return from, to, true
}

// DefaultFilter spans the full observed date range and accepts every category, municipality
// and severity, including rows without a label
func (t *Table) DefaultFilter() Filter {
	f := Filter{
		AllCategories:     true,
		AllMunicipalities: true,
		AllSeverities:     true,
	}
	if from, to, ok := t.DateSpan(); ok {
		f.From = from
		f.To = to
	}
	return f
}

// Apply returns the rows accepted by the filter
func (t *Table) Apply(f Filter) []*Complaint {
	if t == nil {
		return []*Complaint{}
	}
	return f.Apply(t.Rows)
}
