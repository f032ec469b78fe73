// Package almanactest provides a small, real excerpt of the calendar table for tests.
package almanactest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"

	_ "modernc.org/sqlite"
)

// Entries returns rows copied from the 1900-2050 table.
func Entries() []almanac.Entry {
	return []almanac.Entry{
		{
			Solar: almanac.Date{Year: 1973, Month: 8, Day: 19}, Lunar: almanac.Date{Year: 1973, Month: 7, Day: 22},
			YearHanja: "癸丑", YearHangul: "계축", MonthHanja: "庚申", MonthHangul: "경신", DayHanja: "丁亥", DayHangul: "정해",
		},
		{
			Solar: almanac.Date{Year: 1999, Month: 12, Day: 31}, Lunar: almanac.Date{Year: 1999, Month: 11, Day: 24},
			YearHanja: "己卯", YearHangul: "기묘", MonthHanja: "丙子", MonthHangul: "병자", DayHanja: "丁巳", DayHangul: "정사",
		},
		{
			Solar: almanac.Date{Year: 2000, Month: 1, Day: 1}, Lunar: almanac.Date{Year: 1999, Month: 11, Day: 25},
			YearHanja: "己卯", YearHangul: "기묘", MonthHanja: "丙子", MonthHangul: "병자", DayHanja: "戊午", DayHangul: "무오",
			Holiday: true,
		},
		{
			Solar: almanac.Date{Year: 2023, Month: 2, Day: 20}, Lunar: almanac.Date{Year: 2023, Month: 2, Day: 1},
			YearHanja: "癸卯", YearHangul: "계묘", MonthHanja: "甲寅", MonthHangul: "갑인", DayHanja: "己酉", DayHangul: "기유",
		},
		{
			Solar: almanac.Date{Year: 2023, Month: 3, Day: 22}, Lunar: almanac.Date{Year: 2023, Month: 2, Day: 1}, Leap: true,
			YearHanja: "癸卯", YearHangul: "계묘", MonthHanja: "乙卯", MonthHangul: "을묘", DayHanja: "己卯", DayHangul: "기묘",
		},
	}
}

// Table returns the fixture rows indexed.
func Table(tb testing.TB) *almanac.Table {
	tb.Helper()
	t, err := almanac.NewTable(Entries())
	require.NoError(tb, err)
	return t
}

// WriteDB writes entries into a fresh calenda_data SQLite file under dir and
// returns its path. Dates are stored as integers and the leap flag as "윤"/"평".
func WriteDB(tb testing.TB, dir string, entries []almanac.Entry) string {
	tb.Helper()

	path := filepath.Join(dir, config.DefaultTableFile)
	db, err := sql.Open(config.SQLiteDriver, path)
	require.NoError(tb, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE calenda_data (
		cd_sy INTEGER, cd_sm INTEGER, cd_sd INTEGER,
		cd_ly INTEGER, cd_lm INTEGER, cd_ld INTEGER,
		cd_is_yun TEXT,
		cd_hyganjee TEXT, cd_kyganjee TEXT,
		cd_hmganjee TEXT, cd_kmganjee TEXT,
		cd_hdganjee TEXT, cd_kdganjee TEXT,
		holiday TEXT
	)`)
	require.NoError(tb, err)

	for _, e := range entries {
		leap := config.CommonMonthMarker
		if e.Leap {
			leap = config.LeapMonthMarker
		}
		holiday := "0"
		if e.Holiday {
			holiday = "1"
		}
		_, err := db.Exec(`INSERT INTO calenda_data VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			e.Solar.Year, e.Solar.Month, e.Solar.Day,
			e.Lunar.Year, e.Lunar.Month, e.Lunar.Day,
			leap,
			e.YearHanja, e.YearHangul, e.MonthHanja, e.MonthHangul, e.DayHanja, e.DayHangul,
			holiday,
		)
		require.NoError(tb, err)
	}
	return path
}
