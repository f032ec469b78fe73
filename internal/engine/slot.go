package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

// Slot is one of the twelve preset two-hour birth-time windows, or SlotNone.
// Slot n (1-12) is the window of branch n-1.
type Slot uint8

// SlotNone means no time was selected.
const SlotNone Slot = 0

// slotLabels carry their window in the label itself; the start time is read
// back from the label when the slot is used.
var slotLabels = [sexagenary.BranchCount]string{
	"자시 (23:30~01:30)",
	"축시 (01:30~03:30)",
	"인시 (03:30~05:30)",
	"묘시 (05:30~07:30)",
	"진시 (07:30~09:30)",
	"사시 (09:30~11:30)",
	"오시 (11:30~13:30)",
	"미시 (13:30~15:30)",
	"신시 (15:30~17:30)",
	"유시 (17:30~19:30)",
	"술시 (19:30~21:30)",
	"해시 (21:30~23:30)",
}

const slotNoneLabel = "시간 선택 안 함"

// SlotForBranch returns the slot of branch b.
func SlotForBranch(b sexagenary.Branch) Slot {
	if !b.Valid() {
		return SlotNone
	}
	return Slot(b) + 1
}

// Slots returns the twelve presets in clock order starting at 子.
func Slots() []Slot {
	out := make([]Slot, sexagenary.BranchCount)
	for i := range out {
		out[i] = Slot(i + 1)
	}
	return out
}

// Valid reports whether s is SlotNone or one of the presets.
func (s Slot) Valid() bool { return int(s) <= sexagenary.BranchCount }

// Branch returns the branch the slot covers; false for SlotNone.
func (s Slot) Branch() (sexagenary.Branch, bool) {
	if s == SlotNone || !s.Valid() {
		return 0, false
	}
	return sexagenary.Branch(s - 1), true
}

// Label returns the display label, which includes the window.
func (s Slot) Label() string {
	b, ok := s.Branch()
	if !ok {
		return slotNoneLabel
	}
	return slotLabels[b]
}

// Key returns the stable identifier: the romanized branch name or "none".
func (s Slot) Key() string {
	b, ok := s.Branch()
	if !ok {
		return "none"
	}
	return slotKeys[b]
}

func (s Slot) String() string { return s.Key() }

var slotKeys = [sexagenary.BranchCount]string{
	"zi", "chou", "yin", "mao", "chen", "si", "wu", "wei", "shen", "you", "xu", "hai",
}

// MarshalText encodes the slot by key.
func (s Slot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid slot %d", uint8(s))
	}
	return []byte(s.Key()), nil
}

// UnmarshalText accepts anything ParseSlot does.
func (s *Slot) UnmarshalText(text []byte) error {
	parsed, ok := ParseSlot(string(text))
	if !ok {
		return fmt.Errorf("invalid slot %q", text)
	}
	*s = parsed
	return nil
}

// ParseSlot accepts a romanized key ("zi"), a branch character in either script
// ("子", "자"), the Korean hour name ("자시") or a full label.
// The empty string and "none" are SlotNone.
func ParseSlot(v string) (Slot, bool) {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)
	if lower == "" || lower == "none" || v == slotNoneLabel {
		return SlotNone, true
	}
	for i := range slotKeys {
		if slotKeys[i] == lower || slotLabels[i] == v || strings.HasPrefix(slotLabels[i], v+" ") {
			return Slot(i + 1), true
		}
	}
	if r := []rune(v); len(r) == 1 {
		if b, ok := sexagenary.ParseBranch(r[0]); ok {
			return SlotForBranch(b), true
		}
	}
	return SlotNone, false
}

// start reads the window start back out of the label ("(23:30~" → 23:30).
func (s Slot) start() (hour, minute int, ok bool) {
	return parseWindowStart(s.Label())
}

func parseWindowStart(label string) (hour, minute int, ok bool) {
	_, rest, found := strings.Cut(label, config.SlotWindowOpen)
	if !found {
		return 0, 0, false
	}
	startText, _, found := strings.Cut(rest, config.SlotWindowSep)
	if !found {
		return 0, 0, false
	}
	t, err := time.Parse(config.TimeLayoutSlot, strings.TrimSpace(startText))
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
