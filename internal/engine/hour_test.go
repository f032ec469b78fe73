package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

func TestBranchForTime_Boundaries(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 0, "子"},
		{1, 29, "子"},
		{1, 30, "丑"},
		{3, 29, "丑"},
		{3, 30, "寅"},
		{11, 30, "午"},
		{12, 0, "午"},
		{13, 29, "午"},
		{21, 30, "亥"},
		{23, 29, "亥"},
		{23, 30, "子"},
		{23, 59, "子"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%02d:%02d", tt.hour, tt.minute), func(t *testing.T) {
			assert.Equal(t, tt.want, engine.BranchForTime(tt.hour, tt.minute).Hanja())
		})
	}
}

// TestBranchForTime_Total checks every minute of the day against the
// half-hour-shifted two-hour grid.
func TestBranchForTime_Total(t *testing.T) {
	for m := 0; m < 24*60; m++ {
		want := sexagenary.Branch(((m + 30) % (24 * 60)) / 120)
		got := engine.BranchForTime(m/60, m%60)
		require.True(t, got.Valid())
		require.Equal(t, want, got, "minute %d", m)
	}
}

func TestBranchFor_UsesWallClock(t *testing.T) {
	ts := time.Date(2000, 1, 1, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, sexagenary.BranchZi, engine.BranchFor(ts))
}

func TestDeriveHourStem_HourHeadRule(t *testing.T) {
	tests := []struct {
		day    string
		branch sexagenary.Branch
		want   string
	}{
		{"甲子", sexagenary.BranchWu, "庚"},
		{"己巳", sexagenary.BranchZi, "甲"},
		{"乙丑", sexagenary.BranchZi, "丙"},
		{"丙寅", sexagenary.BranchZi, "戊"},
		{"丁亥", sexagenary.BranchZi, "庚"},
		{"戊午", sexagenary.BranchZi, "壬"},
		{"戊午", sexagenary.BranchHai, "癸"},
		{"癸酉", sexagenary.BranchHai, "癸"},
		{"갑오", sexagenary.BranchWu, "庚"},
	}

	for _, tt := range tests {
		t.Run(tt.day+tt.branch.Hanja(), func(t *testing.T) {
			got, ok := engine.DeriveHourStem(tt.day, tt.branch)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Hanja())
		})
	}
}

// TestDeriveHourStem_PairedStems checks that stems five apart share their hour heads.
func TestDeriveHourStem_PairedStems(t *testing.T) {
	for s := sexagenary.Stem(0); s < 5; s++ {
		for b := sexagenary.Branch(0); b < sexagenary.BranchCount; b++ {
			a, ok1 := engine.DeriveHourStem(sexagenary.NewPillar(s, sexagenary.BranchZi).Hanja(), b)
			c, ok2 := engine.DeriveHourStem(sexagenary.NewPillar(s+5, sexagenary.BranchZi).Hanja(), b)
			require.True(t, ok1)
			require.True(t, ok2)
			assert.Equal(t, a, c)
		}
	}
}

func TestDeriveHourStem_Absence(t *testing.T) {
	tests := []struct {
		name   string
		day    string
		branch sexagenary.Branch
	}{
		{"Empty", "", sexagenary.BranchZi},
		{"OneRune", "甲", sexagenary.BranchZi},
		{"ThreeRunes", "甲子丑", sexagenary.BranchZi},
		{"Latin", "AB", sexagenary.BranchZi},
		{"Swapped", "子甲", sexagenary.BranchZi},
		{"InvalidBranch", "甲子", sexagenary.Branch(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := engine.DeriveHourStem(tt.day, tt.branch)
			assert.False(t, ok)

			_, ok = engine.HourPillar(tt.day, tt.branch)
			assert.False(t, ok)
		})
	}
}

func TestHourPillar(t *testing.T) {
	p, ok := engine.HourPillar("丁亥", sexagenary.BranchWu)
	require.True(t, ok)
	assert.Equal(t, "丙午", p.Hanja())
	assert.Equal(t, "병오", p.Hangul())
}
