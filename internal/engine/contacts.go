package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
)

// SourceConfig selects the address book to read.
type SourceConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// ContactResult is the resolution of one contact's birthday.
// Exactly one of Record and Err is set.
type ContactResult struct {
	UID       string        `json:"uid"`
	Name      string        `json:"name"`
	BirthDate string        `json:"birth_date"` // YYYYMMDD as read from BDAY
	Calendar  almanac.Kind  `json:"calendar"`
	Record    *ResultRecord `json:"record,omitempty"`
	Err       string        `json:"error,omitempty"`
}

// ContactResolver resolves the birthdays found in a vCard address book.
type ContactResolver struct {
	Resolver *Resolver
	Fetcher  VCardFetcher
}

// Run reads the configured source and resolves every contact with a full BDAY.
// Cards that fail to decode, lack a year, or fall outside the table are
// reported or skipped individually; only source errors abort the run.
func (c *ContactResolver) Run(ctx context.Context, cfg SourceConfig) ([]ContactResult, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompContacts,
		config.LogKeyMode, cfg.Mode,
	)

	reader, err := c.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	decoder := vcard.NewDecoder(reader)
	stats := struct{ processed, resolved, failed int }{}
	var results []ContactResult

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			// A decoder error leaves the stream mid-card; nothing after it is reliable.
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			continue
		}
		stats.processed++

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}
		birth, err := parseBirthday(bday.Value)
		if err != nil {
			log.Debug(config.MsgSkippedDate, config.LogKeyValue, bday.Value)
			continue
		}

		name := contactName(card)
		kind := bdayKind(bday)
		res := ContactResult{
			UID:       contactUID(name, birth),
			Name:      name,
			BirthDate: birth.Format(config.DateLayoutInput),
			Calendar:  kind,
		}

		rec, err := c.Resolver.Resolve(ctx, BirthQuery{Date: res.BirthDate, Calendar: kind})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.Err = err.Error()
			stats.failed++
		} else {
			res.Record = rec
			stats.resolved++
		}
		results = append(results, res)
	}

	log.Info(config.MsgContactsDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyResolved, stats.resolved),
			slog.Int(config.LogKeyFailed, stats.failed),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return results, nil
}

// LunarBirthdays collects the resolved contacts for a CalendarBuilder.
func LunarBirthdays(results []ContactResult) []LunarBirthday {
	var out []LunarBirthday
	for _, r := range results {
		if r.Record != nil {
			out = append(out, BirthdayFromRecord(r.Name, r.Record))
		}
	}
	return out
}

func (c *ContactResolver) acquireStream(ctx context.Context, cfg SourceConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if c.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return c.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// parseBirthday accepts the full-date BDAY layouts. Year-less dates
// (--MM-DD) cannot be resolved and are rejected.
func parseBirthday(value string) (time.Time, error) {
	for _, layout := range []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}

// contactName prefers FN over N.
func contactName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

// bdayKind reads a CALSCALE parameter naming a lunar calendar.
func bdayKind(f *vcard.Field) almanac.Kind {
	switch strings.ToLower(f.Params.Get(config.VCardParamCalScale)) {
	case config.CalScaleChinese, config.CalScaleKorean, config.CalScaleLunar:
		return almanac.LunarCommon
	default:
		return almanac.Solar
	}
}

func contactUID(name string, birth time.Time) string {
	input := fmt.Sprintf(config.FormatHashInput, name, birth.Format(config.DateLayoutISO), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
