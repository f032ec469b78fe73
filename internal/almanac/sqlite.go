package almanac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tartampluch/go-manse/internal/config"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Load reads the calenda_data table from the SQLite file at path and indexes it.
// The file is opened read-only. A missing leap or holiday column is tolerated.
func Load(ctx context.Context, path string, opts ...Option) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableMissing, err)
	}

	db, err := sql.Open(config.SQLiteDriver, "file:"+path+config.SQLiteReadOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableOpen, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableOpen, err)
	}

	entries, err := readEntries(ctx, db)
	if err != nil {
		return nil, err
	}

	t, err := NewTable(entries, opts...)
	if err != nil {
		return nil, err
	}

	lo, hi := t.Range()
	slog.Info(config.MsgTableLoaded,
		config.LogKeyComponent, config.CompAlmanac,
		config.LogKeyFile, path,
		config.LogKeyRows, t.Len(),
		config.LogKeyYearMin, lo,
		config.LogKeyYearMax, hi,
	)
	return t, nil
}

// readEntries scans every usable row. Rows whose date columns are not numbers
// can never match a lookup and are dropped.
func readEntries(ctx context.Context, db *sql.DB) ([]Entry, error) {
	cols, err := tableColumns(ctx, db)
	if err != nil {
		return nil, err
	}

	leapExpr := "NULL"
	if cols[config.ColLeap] {
		leapExpr = config.ColLeap
	} else {
		slog.Warn(config.MsgTableNoLeapCol, config.LogKeyComponent, config.CompAlmanac)
	}
	holidayExpr := "NULL"
	if cols[config.ColHoliday] {
		holidayExpr = config.ColHoliday
	}

	query := "SELECT " + strings.Join([]string{
		config.ColSolarYear, config.ColSolarMonth, config.ColSolarDay,
		config.ColLunarYear, config.ColLunarMonth, config.ColLunarDay,
		leapExpr,
		config.ColYearHanja, config.ColYearHangul,
		config.ColMonthHanja, config.ColMonthHangul,
		config.ColDayHanja, config.ColDayHangul,
		holidayExpr,
	}, ", ") + " FROM " + config.TableName + " ORDER BY rowid"

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableQuery, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			sy, sm, sd, ly, lm, ld, leap     sql.NullString
			yHanja, yHangul, mHanja, mHangul sql.NullString
			dHanja, dHangul, holiday         sql.NullString
		)
		if err := rows.Scan(&sy, &sm, &sd, &ly, &lm, &ld, &leap,
			&yHanja, &yHangul, &mHanja, &mHangul, &dHanja, &dHangul, &holiday); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrTableQuery, err)
		}

		solar, okSolar := parseDate(sy, sm, sd)
		lunar, okLunar := parseDate(ly, lm, ld)
		if !okSolar || !okLunar {
			continue
		}

		entries = append(entries, Entry{
			Solar:       solar,
			Lunar:       lunar,
			Leap:        parseLeap(leap.String),
			YearHanja:   strings.TrimSpace(yHanja.String),
			YearHangul:  strings.TrimSpace(yHangul.String),
			MonthHanja:  strings.TrimSpace(mHanja.String),
			MonthHangul: strings.TrimSpace(mHangul.String),
			DayHanja:    strings.TrimSpace(dHanja.String),
			DayHangul:   strings.TrimSpace(dHangul.String),
			Holiday:     parseFlag(holiday.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableQuery, err)
	}
	if len(entries) == 0 {
		return nil, errors.New(config.ErrTableEmpty)
	}
	return entries, nil
}

func tableColumns(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+config.TableName+")")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableQuery, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrTableQuery, err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTableQuery, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: no such table %s", config.ErrTableQuery, config.TableName)
	}
	return cols, nil
}

func parseDate(y, m, d sql.NullString) (Date, bool) {
	year, ok1 := parseNumber(y)
	month, ok2 := parseNumber(m)
	day, ok3 := parseNumber(d)
	if !ok1 || !ok2 || !ok3 {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// parseNumber accepts integers and integral floats ("1973.0"), which is how
// spreadsheet exports commonly store year columns.
func parseNumber(v sql.NullString) (int, bool) {
	if !v.Valid {
		return 0, false
	}
	s := strings.TrimSpace(v.String)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func parseLeap(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.LeapMonthMarker, "1", "y", "yes", "true", "leap":
		return true
	default:
		return false
	}
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "n", "no", "false", config.CommonMonthMarker:
		return false
	default:
		return true
	}
}
