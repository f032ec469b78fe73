package engine

import (
	"time"

	"github.com/tartampluch/go-manse/internal/sexagenary"
)

// branchWindows lists, in order, the clock value (hour*100+minute) that closes
// each two-hour window and the branch of that window. Anything at or past the
// last bound wraps back to 子.
var branchWindows = [...]struct {
	bound  int
	branch sexagenary.Branch
}{
	{130, sexagenary.BranchZi},
	{330, sexagenary.BranchChou},
	{530, sexagenary.BranchYin},
	{730, sexagenary.BranchMao},
	{930, sexagenary.BranchChen},
	{1130, sexagenary.BranchSi},
	{1330, sexagenary.BranchWu},
	{1530, sexagenary.BranchWei},
	{1730, sexagenary.BranchShen},
	{1930, sexagenary.BranchYou},
	{2130, sexagenary.BranchXu},
	{2330, sexagenary.BranchHai},
}

// BranchForTime classifies a clock time into its two-hour branch.
// Windows start on odd half-hours; 子 covers 23:30 through 01:29.
func BranchForTime(hour, minute int) sexagenary.Branch {
	v := hour*100 + minute
	for _, w := range branchWindows {
		if v < w.bound {
			return w.branch
		}
	}
	return sexagenary.BranchZi
}

// BranchFor classifies the wall-clock time of t.
func BranchFor(t time.Time) sexagenary.Branch {
	return BranchForTime(t.Hour(), t.Minute())
}

// DeriveHourStem applies the hour-head rule: the 子 hour of a day whose stem
// is s starts at stem (s mod 5) * 2, and each later branch advances one stem.
// It returns false when dayPillar is not a stem+branch pair or b is not a
// branch; callers omit the hour pillar in that case.
func DeriveHourStem(dayPillar string, b sexagenary.Branch) (sexagenary.Stem, bool) {
	if !b.Valid() {
		return 0, false
	}
	day, ok := sexagenary.ParsePillar(dayPillar)
	if !ok {
		return 0, false
	}

	start := sexagenary.Stem((day.Stem % 5) * 2)
	return start.Add(int(b)), true
}

// HourPillar combines DeriveHourStem with the branch itself.
func HourPillar(dayPillar string, b sexagenary.Branch) (sexagenary.Pillar, bool) {
	s, ok := DeriveHourStem(dayPillar, b)
	if !ok {
		return sexagenary.Pillar{}, false
	}
	return sexagenary.Pillar{Stem: s, Branch: b}, true
}
