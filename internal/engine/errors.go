package engine

import (
	"errors"

	"github.com/tartampluch/go-manse/internal/config"
)

// Resolution errors. Callers branch on them with errors.Is; the message of each
// sentinel is safe to show to the user as is.
var (
	// ErrInvalidFormat means the birth date is not exactly 8 digits.
	ErrInvalidFormat = errors.New(config.ErrInvalidFormat)
	// ErrInvalidDate means the birth date is well formed but does not exist.
	ErrInvalidDate = errors.New(config.ErrInvalidDate)
	// ErrInvalidTime means a direct birth time is not HHMM within 0000-2359.
	ErrInvalidTime = errors.New(config.ErrInvalidTime)
	// ErrNotFound means the table has no row for the requested date and kind.
	ErrNotFound = errors.New(config.ErrNotFound)
)

// IsValidation reports whether err is caused by bad user input, as opposed to
// a missing table row or an internal fault.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidOption)
}

// ErrCorruptEntry means a matched table row holds a pillar that is not a
// stem+branch pair. It points at a broken table, not at bad input.
var ErrCorruptEntry = errors.New(config.ErrCorruptEntry)

// MessageKey returns the translation key describing err for the user.
func MessageKey(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return config.TKeyErrInvalidFormat
	case errors.Is(err, ErrInvalidDate):
		return config.TKeyErrInvalidDate
	case errors.Is(err, ErrInvalidTime):
		return config.TKeyErrInvalidTime
	case errors.Is(err, ErrInvalidOption):
		return config.TKeyErrInvalidOption
	case errors.Is(err, ErrNotFound):
		return config.TKeyErrNotFound
	default:
		return config.TKeyErrInternal
	}
}
