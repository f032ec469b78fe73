// Package almanac provides the precomputed solar/lunar correspondence table.
// The table is loaded once, never mutated afterwards, and is safe for
// concurrent lookups without locking.
package almanac

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-manse/internal/config"
)

// Table is an immutable index over calendar entries keyed by
// (kind, year, month, day).
type Table struct {
	entries    []Entry
	index      map[key]int
	duplicates int
	minYear    int
	maxYear    int
}

type options struct {
	strict bool
}

// Option configures table construction.
type Option func(*options)

// WithStrict makes duplicate keys a construction error instead of a warning.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// NewTable indexes entries. When several rows share a key the first one wins,
// matching a first-match scan of the source table.
func NewTable(entries []Entry, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(entries) == 0 {
		return nil, errors.New(config.ErrTableEmpty)
	}

	t := &Table{
		entries: entries,
		index:   make(map[key]int, len(entries)*2),
		minYear: entries[0].Solar.Year,
		maxYear: entries[0].Solar.Year,
	}

	for i, e := range entries {
		for _, k := range []Kind{Solar, LunarCommon} {
			ek := e.key(k)
			if _, exists := t.index[ek]; exists {
				t.duplicates++
				slog.Debug(config.MsgTableDuplicate,
					config.LogKeyComponent, config.CompAlmanac,
					config.LogKeyCalendar, ek.kind.String(),
					config.LogKeyDate, ek.date.String(),
				)
				continue
			}
			t.index[ek] = i
		}
		t.minYear = min(t.minYear, e.Solar.Year)
		t.maxYear = max(t.maxYear, e.Solar.Year)
	}

	if t.duplicates > 0 {
		if o.strict {
			return nil, fmt.Errorf("%s: %d", config.ErrTableDuplicate, t.duplicates)
		}
		slog.Warn(config.ErrTableDuplicate,
			config.LogKeyComponent, config.CompAlmanac,
			config.LogKeyDupes, t.duplicates,
		)
	}

	return t, nil
}

// Lookup returns the entry matching the date for the given kind.
func (t *Table) Lookup(kind Kind, year, month, day int) (Entry, bool) {
	i, ok := t.index[key{kind: kind, date: Date{Year: year, Month: month, Day: day}}]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.entries) }

// Duplicates returns how many rows were shadowed by an earlier row with the same key.
func (t *Table) Duplicates() int { return t.duplicates }

// Range returns the first and last solar year covered by the table.
func (t *Table) Range() (int, int) { return t.minYear, t.maxYear }

// LunarOccurrences returns, for each lunar year in [fromYear, toYear], the entry
// carrying the given lunar month and day. Years without that day (a 30th in a
// short month, or a missing leap month) are skipped.
func (t *Table) LunarOccurrences(month, day int, leap bool, fromYear, toYear int) []Entry {
	kind := LunarCommon
	if leap {
		kind = LunarLeap
	}

	var out []Entry
	for y := fromYear; y <= toYear; y++ {
		if e, ok := t.Lookup(kind, y, month, day); ok {
			out = append(out, e)
		}
	}
	return out
}
