package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

// BloodType is the optional ABO group shown next to the pillars.
type BloodType uint8

// Blood groups.
const (
	BloodUnknown BloodType = iota
	BloodA
	BloodB
	BloodO
	BloodAB
)

var bloodNames = [...]string{"", "A", "B", "O", "AB"}

func (b BloodType) String() string {
	if int(b) >= len(bloodNames) {
		return ""
	}
	return bloodNames[b]
}

// Annotate renders the group with the Rh(-) marker when rhNegative is set.
// An unknown group renders as the empty string regardless of Rh.
func (b BloodType) Annotate(rhNegative bool) string {
	name := b.String()
	if name == "" {
		return ""
	}
	if rhNegative {
		return name + config.RhNegativeSuffix
	}
	return name
}

// ParseBloodType accepts "A", "B", "O", "AB" in any case. The empty string
// and "unknown" (or the Korean "선택 안함") are BloodUnknown.
func ParseBloodType(s string) (BloodType, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "UNKNOWN", "선택 안함":
		return BloodUnknown, true
	}
	for i, name := range bloodNames {
		if i > 0 && name == s {
			return BloodType(i), true
		}
	}
	return BloodUnknown, false
}

// BirthQuery is one resolution request.
type BirthQuery struct {
	// Date is the birth date as YYYYMMDD in the calendar named by Calendar.
	Date       string       `json:"date"`
	TimeMode   TimeMode     `json:"time_mode"`
	DirectTime string       `json:"direct_time,omitempty"`
	Slot       Slot         `json:"slot"`
	Region     Region       `json:"region"`
	Calendar   almanac.Kind `json:"calendar"`
	BloodType  BloodType    `json:"-"`
	RhNegative bool         `json:"rh_negative"`
}

// PillarSet holds the four pillars. Hour is nil when no time was entered or
// the hour pillar could not be derived.
type PillarSet struct {
	Year  sexagenary.Pillar  `json:"year"`
	Month sexagenary.Pillar  `json:"month"`
	Day   sexagenary.Pillar  `json:"day"`
	Hour  *sexagenary.Pillar `json:"hour"`
}

// ResultRecord is the full answer to a BirthQuery.
type ResultRecord struct {
	Pillars   PillarSet         `json:"pillars"`
	BirthDate string            `json:"birth_date"` // yy.mm.dd of the entered date
	Age       int               `json:"age"`
	BloodType string            `json:"blood_type"`
	Zodiac    sexagenary.Zodiac `json:"zodiac"`
	Calendar  almanac.Kind      `json:"calendar"`

	// Entry is the matched table row, giving both the solar and the lunar date.
	Entry almanac.Entry `json:"entry"`
	// SolarTime is the region-corrected birth time, nil when no time was entered.
	SolarTime *time.Time `json:"solar_time,omitempty"`
}

// Lookup is the table the resolver reads. *almanac.Table implements it.
type Lookup interface {
	Lookup(kind almanac.Kind, year, month, day int) (almanac.Entry, bool)
}

// Resolver turns birth queries into pillar sets. It keeps no state between
// calls and may be shared by any number of goroutines.
type Resolver struct {
	Table Lookup
	Clock Clock
}

// NewResolver creates a resolver over table. A nil clock means RealClock.
func NewResolver(table Lookup, clock Clock) *Resolver {
	if clock == nil {
		clock = RealClock{}
	}
	return &Resolver{Table: table, Clock: clock}
}

// Resolve validates q, looks its date up and derives the pillars.
// Validation errors are returned before the table is touched.
func (r *Resolver) Resolve(ctx context.Context, q BirthQuery) (*ResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := slog.With(
		config.LogKeyComponent, config.CompResolver,
		config.LogKeyCalendar, q.Calendar.String(),
	)

	date, err := ValidateDate(q.Date)
	if err != nil {
		log.Debug(config.MsgResolveFailed, config.LogKeyError, err)
		return nil, err
	}
	if !q.Calendar.Valid() {
		err := fmt.Errorf("%w: %s %s", ErrInvalidOption, config.ErrUnknownCal, q.Calendar)
		log.Debug(config.MsgResolveFailed, config.LogKeyError, err)
		return nil, err
	}

	solarTime, hasTime, err := SolarTime(date, q.TimeMode, q.DirectTime, q.Slot, q.Region)
	if err != nil {
		log.Debug(config.MsgResolveFailed, config.LogKeyError, err)
		return nil, err
	}

	entry, found := r.Table.Lookup(q.Calendar, date.Year(), int(date.Month()), date.Day())
	if !found {
		log.Debug(config.MsgResolveFailed, config.LogKeyDate, q.Date, config.LogKeyError, ErrNotFound)
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, q.Calendar, date.Format(config.DateLayoutISO))
	}

	pillars, err := entryPillars(entry)
	if err != nil {
		return nil, err
	}

	rec := &ResultRecord{
		BirthDate: date.Format(config.DateLayoutDisplay),
		Age:       r.Clock.Now().Year() - entry.Solar.Year + 1,
		BloodType: q.BloodType.Annotate(q.RhNegative),
		Zodiac:    pillars.Year.Branch.Zodiac(),
		Calendar:  q.Calendar,
		Entry:     entry,
	}

	if hasTime {
		rec.SolarTime = &solarTime
		// The day pillar of the looked-up date is used even when the corrected
		// time falls in the late 子 hour that some schools assign to the next day.
		if hour, ok := HourPillar(entry.DayPillar(), BranchFor(solarTime)); ok {
			pillars.Hour = &hour
		} else {
			log.Warn(config.MsgHourOmitted, config.LogKeyDate, q.Date)
		}
	}
	rec.Pillars = pillars

	log.Debug(config.MsgResolved,
		config.LogKeyDate, q.Date,
		config.LogKeyRegion, q.Region.Key(),
	)
	return rec, nil
}

func entryPillars(e almanac.Entry) (PillarSet, error) {
	var ps PillarSet
	for _, f := range []struct {
		dst *sexagenary.Pillar
		raw string
	}{
		{&ps.Year, e.YearPillar()},
		{&ps.Month, e.MonthPillar()},
		{&ps.Day, e.DayPillar()},
	} {
		p, ok := sexagenary.ParsePillar(f.raw)
		if !ok {
			return PillarSet{}, fmt.Errorf("%w: %s %q", ErrCorruptEntry, e.Solar, f.raw)
		}
		*f.dst = p
	}
	return ps, nil
}
