package almanac

import (
	"fmt"
	"strings"
)

// Kind selects which date fields of an Entry a lookup matches.
type Kind uint8

const (
	// Solar matches the Gregorian date.
	Solar Kind = iota
	// LunarCommon matches a lunar date in an ordinary month.
	LunarCommon
	// LunarLeap matches a lunar date in an intercalary month.
	LunarLeap
)

var kindNames = [...]string{"solar", "lunar", "lunar-leap"}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the three calendar kinds.
func (k Kind) Valid() bool { return int(k) < len(kindNames) }

// IsLunar reports whether k matches lunar date fields.
func (k Kind) IsLunar() bool { return k == LunarCommon || k == LunarLeap }

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid calendar kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("invalid calendar kind %q", text)
	}
	*k = parsed
	return nil
}

// ParseKind accepts the English names plus the Korean labels of the input form
// ("양력", "음력(평달)", "음력(윤달)").
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "solar", "양력":
		return Solar, true
	case "lunar", "lunar-common", "음력", "음력(평달)":
		return LunarCommon, true
	case "lunar-leap", "leap", "음력(윤달)":
		return LunarLeap, true
	default:
		return 0, false
	}
}

// Date is a calendar date without time or location; it is comparable and
// serves as the lookup key.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Entry is one row of the precomputed calendar table.
type Entry struct {
	Solar Date `json:"solar"`
	Lunar Date `json:"lunar"`
	Leap  bool `json:"leap"`

	// Pillars as stored, two characters each.
	YearHanja   string `json:"year_hanja"`
	YearHangul  string `json:"year_hangul"`
	MonthHanja  string `json:"month_hanja"`
	MonthHangul string `json:"month_hangul"`
	DayHanja    string `json:"day_hanja"`
	DayHangul   string `json:"day_hangul"`

	Holiday bool `json:"holiday"`
}

// YearPillar returns the year pillar, preferring the hanja column.
func (e Entry) YearPillar() string { return firstNonEmpty(e.YearHanja, e.YearHangul) }

// MonthPillar returns the month pillar, preferring the hanja column.
func (e Entry) MonthPillar() string { return firstNonEmpty(e.MonthHanja, e.MonthHangul) }

// DayPillar returns the day pillar, preferring the hanja column.
func (e Entry) DayPillar() string { return firstNonEmpty(e.DayHanja, e.DayHangul) }

// key returns the index key of the entry for kind k.
func (e Entry) key(k Kind) key {
	if k == Solar {
		return key{kind: Solar, date: e.Solar}
	}
	if e.Leap {
		return key{kind: LunarLeap, date: e.Lunar}
	}
	return key{kind: LunarCommon, date: e.Lunar}
}

type key struct {
	kind Kind
	date Date
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
