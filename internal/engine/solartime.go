package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-manse/internal/config"
)

// TimeMode selects how the birth time is given.
type TimeMode uint8

const (
	// TimeNone means no birth time.
	TimeNone TimeMode = iota
	// TimeDirect reads BirthQuery.DirectTime as HHMM.
	TimeDirect
	// TimeSlot reads BirthQuery.Slot.
	TimeSlot
)

var timeModeNames = [...]string{"none", "direct", "slot"}

func (m TimeMode) String() string {
	if int(m) >= len(timeModeNames) {
		return fmt.Sprintf("TimeMode(%d)", uint8(m))
	}
	return timeModeNames[m]
}

// MarshalText encodes the mode by name.
func (m TimeMode) MarshalText() ([]byte, error) {
	if int(m) >= len(timeModeNames) {
		return nil, fmt.Errorf("invalid time mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (m *TimeMode) UnmarshalText(text []byte) error {
	for i, name := range timeModeNames {
		if strings.EqualFold(name, string(text)) {
			*m = TimeMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid time mode %q", text)
}

// SolarTime combines the birth date with the entered clock time and shifts the
// result by the region's offset. The result may land on the previous day.
//
// ok is false when no time was entered. A direct time that is not HHMM within
// 0000-2359 fails with ErrInvalidTime. Timestamps are naive wall clocks in UTC;
// no zone or daylight-saving rule is applied.
func SolarTime(date time.Time, mode TimeMode, direct string, slot Slot, region Region) (t time.Time, ok bool, err error) {
	var hour, minute int

	switch mode {
	case TimeDirect:
		hour, minute, ok, err = parseClock(direct)
		if err != nil || !ok {
			return time.Time{}, false, err
		}
	case TimeSlot:
		if slot == SlotNone {
			return time.Time{}, false, nil
		}
		hour, minute, ok = slot.start()
		if !ok {
			slog.Warn(config.MsgSlotParse,
				config.LogKeyComponent, config.CompResolver,
				config.LogKeySlot, slot.Label(),
			)
			return time.Time{}, false, nil
		}
	default:
		return time.Time{}, false, nil
	}

	base := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return base.Add(time.Duration(region.Offset()) * time.Minute), true, nil
}
