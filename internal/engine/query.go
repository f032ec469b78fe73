package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
)

// ErrInvalidOption means a form field names no known calendar, slot, region
// or blood type.
var ErrInvalidOption = errors.New(config.ErrInvalidOption)

// QueryInput is a birth query as typed into a form or on the command line.
type QueryInput struct {
	Date       string
	Time       string // HHMM; takes precedence over Slot
	Slot       string
	Region     string
	Calendar   string
	BloodType  string
	RhNegative bool
}

// Query converts the text fields into a BirthQuery. It checks the option
// fields only; the date and the time are validated by Resolve.
func (in QueryInput) Query() (BirthQuery, error) {
	q := BirthQuery{Date: in.Date, RhNegative: in.RhNegative}

	kind, ok := almanac.ParseKind(in.Calendar)
	if !ok {
		return BirthQuery{}, fmt.Errorf("%w: %s %q", ErrInvalidOption, config.ErrUnknownCal, in.Calendar)
	}
	q.Calendar = kind

	region, ok := ParseRegion(in.Region)
	if !ok {
		return BirthQuery{}, fmt.Errorf("%w: %s %q", ErrInvalidOption, config.ErrUnknownRegion, in.Region)
	}
	q.Region = region

	blood, ok := ParseBloodType(in.BloodType)
	if !ok {
		return BirthQuery{}, fmt.Errorf("%w: %s %q", ErrInvalidOption, config.ErrUnknownBlood, in.BloodType)
	}
	q.BloodType = blood

	switch {
	case in.Time != "":
		q.TimeMode = TimeDirect
		q.DirectTime = in.Time
	case in.Slot != "":
		slot, ok := ParseSlot(in.Slot)
		if !ok {
			return BirthQuery{}, fmt.Errorf("%w: %s %q", ErrInvalidOption, config.ErrUnknownSlot, in.Slot)
		}
		if slot != SlotNone {
			q.TimeMode = TimeSlot
			q.Slot = slot
		}
	}
	return q, nil
}
