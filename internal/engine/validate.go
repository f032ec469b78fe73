package engine

import (
	"fmt"
	"time"

	"golang.org/x/text/width"

	"github.com/tartampluch/go-manse/internal/config"
)

// ValidateDate parses an 8-digit YYYYMMDD birth date.
// Full-width digits (as typed by Korean and Japanese IMEs) are folded first.
func ValidateDate(s string) (time.Time, error) {
	s = width.Fold.String(s)
	if len(s) != config.DateInputLength || !allDigits(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	t, err := time.Parse(config.DateLayoutInput, s)
	if err != nil || t.Year() < config.MinYear {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

// parseClock parses a direct HHMM birth time. The empty string means no time
// was given and is not an error.
func parseClock(s string) (hour, minute int, ok bool, err error) {
	if s == "" {
		return 0, 0, false, nil
	}
	s = width.Fold.String(s)
	if len(s) != config.TimeInputLength || !allDigits(s) {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[2]-'0')*10 + int(s[3]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false, fmt.Errorf("%w: %s", ErrInvalidTime, s)
	}
	return hour, minute, true, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
