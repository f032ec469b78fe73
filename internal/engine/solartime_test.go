package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

var birthDay = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSolarTime_Direct(t *testing.T) {
	tests := []struct {
		name   string
		direct string
		region engine.Region
		want   time.Time
	}{
		{"NoOffset", "1200", engine.RegionUnspecified, time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"Seoul", "1200", engine.RegionSeoul, time.Date(2000, 1, 1, 11, 28, 0, 0, time.UTC)},
		{"Busan", "0930", engine.RegionBusan, time.Date(2000, 1, 1, 9, 6, 0, 0, time.UTC)},
		{"CrossesMidnight", "0010", engine.RegionSeoul, time.Date(1999, 12, 31, 23, 38, 0, 0, time.UTC)},
		{"Midnight", "0000", engine.RegionUnspecified, birthDay},
		{"LastMinute", "2359", engine.RegionJeju, time.Date(2000, 1, 1, 23, 25, 0, 0, time.UTC)},
		{"FullWidth", "１２００", engine.RegionUnspecified, time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := engine.SolarTime(birthDay, engine.TimeDirect, tt.direct, engine.SlotNone, tt.region)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSolarTime_DirectEmptyMeansNoTime(t *testing.T) {
	_, ok, err := engine.SolarTime(birthDay, engine.TimeDirect, "", engine.SlotNone, engine.RegionSeoul)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSolarTime_InvalidDirect(t *testing.T) {
	for _, in := range []string{"2460", "2400", "1260", "9999", "123", "12345", "12:0", "ab00", "-100"} {
		t.Run(in, func(t *testing.T) {
			_, ok, err := engine.SolarTime(birthDay, engine.TimeDirect, in, engine.SlotNone, engine.RegionUnspecified)
			require.Error(t, err)
			assert.ErrorIs(t, err, engine.ErrInvalidTime)
			assert.False(t, ok)
		})
	}
}

func TestSolarTime_ZeroOffsetIsIdentity(t *testing.T) {
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 29, 30, 59} {
			direct := time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("1504")
			got, ok, err := engine.SolarTime(birthDay, engine.TimeDirect, direct, engine.SlotNone, engine.RegionUnspecified)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, birthDay.Add(time.Duration(h)*time.Hour+time.Duration(m)*time.Minute), got)
		}
	}
}

func TestSolarTime_Slots(t *testing.T) {
	for _, s := range engine.Slots() {
		t.Run(s.Key(), func(t *testing.T) {
			got, ok, err := engine.SolarTime(birthDay, engine.TimeSlot, "", s, engine.RegionUnspecified)
			require.NoError(t, err)
			require.True(t, ok, "label %q must carry a start time", s.Label())

			b, _ := s.Branch()
			assert.Equal(t, b, engine.BranchFor(got), "slot start must fall in its own window")
			assert.Equal(t, 30, got.Minute())
		})
	}
}

// TestSolarTime_SlotWithOffset keeps the offset applied to the window start, so
// the 子 slot in Seoul lands in the 亥 window.
func TestSolarTime_SlotWithOffset(t *testing.T) {
	zi := engine.SlotForBranch(sexagenary.BranchZi)

	got, ok, err := engine.SolarTime(birthDay, engine.TimeSlot, "", zi, engine.RegionSeoul)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2000, 1, 1, 22, 58, 0, 0, time.UTC), got)
	assert.Equal(t, sexagenary.BranchHai, engine.BranchFor(got))
}

func TestSolarTime_NoTime(t *testing.T) {
	tests := []struct {
		name string
		mode engine.TimeMode
		slot engine.Slot
	}{
		{"ModeNone", engine.TimeNone, engine.SlotForBranch(sexagenary.BranchWu)},
		{"SlotNone", engine.TimeSlot, engine.SlotNone},
		{"UnknownSlotDegrades", engine.TimeSlot, engine.Slot(40)},
		{"UnknownMode", engine.TimeMode(9), engine.SlotNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := engine.SolarTime(birthDay, tt.mode, "1200", tt.slot, engine.RegionSeoul)
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

// A slot whose label carries no readable window start degrades to "no time"
// rather than failing the whole resolution.
func TestSolarTime_UnparseableSlotLabel(t *testing.T) {
	got, ok, err := engine.SolarTime(birthDay, engine.TimeSlot, "", engine.Slot(13), engine.RegionSeoul)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, got.IsZero())
}

func TestRegions(t *testing.T) {
	all := engine.Regions()
	require.Len(t, all, 17)
	assert.Equal(t, engine.RegionUnspecified, all[0])
	assert.Zero(t, engine.RegionUnspecified.Offset())

	for _, r := range all {
		t.Run(r.Key(), func(t *testing.T) {
			assert.NotEmpty(t, r.Name())
			assert.LessOrEqual(t, r.Offset(), 0)
			assert.GreaterOrEqual(t, r.Offset(), -40)

			byKey, ok := engine.ParseRegion(r.Key())
			require.True(t, ok)
			assert.Equal(t, r, byKey)

			byName, ok := engine.ParseRegion(r.Name())
			require.True(t, ok)
			assert.Equal(t, r, byName)
		})
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Region
		ok   bool
	}{
		{"", engine.RegionUnspecified, true},
		{"Seoul", engine.RegionSeoul, true},
		{"  busan ", engine.RegionBusan, true},
		{"제주", engine.RegionJeju, true},
		{"tokyo", engine.RegionUnspecified, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := engine.ParseRegion(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, engine.RegionUnspecified, engine.RegionOrUnspecified("atlantis"))
	assert.Equal(t, -32, engine.RegionOrUnspecified("seoul").Offset())
	assert.Zero(t, engine.Region(99).Offset())
	assert.False(t, engine.Region(99).Valid())
}

func TestParseSlot(t *testing.T) {
	zi := engine.SlotForBranch(sexagenary.BranchZi)
	shen := engine.SlotForBranch(sexagenary.BranchShen)

	tests := []struct {
		in   string
		want engine.Slot
		ok   bool
	}{
		{"", engine.SlotNone, true},
		{"none", engine.SlotNone, true},
		{"zi", zi, true},
		{"ZI", zi, true},
		{"子", zi, true},
		{"자", zi, true},
		{"자시", zi, true},
		{"자시 (23:30~01:30)", zi, true},
		{"申", shen, true},
		{"신시", shen, true},
		{"신", shen, true},
		{"midnight", engine.SlotNone, false},
		{"甲", engine.SlotNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := engine.ParseSlot(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, engine.SlotNone, engine.SlotForBranch(sexagenary.Branch(12)))
}

func TestSlotAndRegion_JSON(t *testing.T) {
	q := engine.BirthQuery{
		Date:     "20000101",
		TimeMode: engine.TimeSlot,
		Slot:     engine.SlotForBranch(sexagenary.BranchZi),
		Region:   engine.RegionBusan,
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"20000101","time_mode":"slot","slot":"zi","region":"busan","calendar":"solar","rh_negative":false}`, string(data))

	var back engine.BirthQuery
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}
