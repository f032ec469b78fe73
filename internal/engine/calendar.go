package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
)

// LunarBirthday is a person whose birthday is kept on the lunar calendar.
type LunarBirthday struct {
	Name      string
	Lunar     almanac.Date
	Leap      bool
	SolarYear int // solar year of birth, used for the age and the start year
}

// BirthdayFromRecord takes the lunar date of a resolved birth.
func BirthdayFromRecord(name string, rec *ResultRecord) LunarBirthday {
	return LunarBirthday{
		Name:      name,
		Lunar:     rec.Entry.Lunar,
		Leap:      rec.Entry.Leap,
		SolarYear: rec.Entry.Solar.Year,
	}
}

// Occurrences finds the solar days carrying a lunar month and day.
// *almanac.Table implements it.
type Occurrences interface {
	LunarOccurrences(month, day int, leap bool, fromYear, toYear int) []almanac.Entry
}

// CalendarBuilder renders lunar birthdays as an iCalendar feed of all-day
// events on their solar dates.
type CalendarBuilder struct {
	Table Occurrences
	Clock Clock

	// FormatSummary allows callers to inject localized event titles.
	FormatSummary func(name string, age int) string
}

// Build emits one event per person for the lunar years before, of and after
// the current one. Years before birth and years lacking the lunar day (or the
// leap month) are skipped. It returns the feed and the number of events.
func (b *CalendarBuilder) Build(ctx context.Context, birthdays []LunarBirthday) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := b.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, p := range birthdays {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		for _, e := range b.events(p, now) {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	count := len(cal.Children)
	if count == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgICSBuilt,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCount, len(birthdays),
		config.LogKeyEvents, count,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), count, nil
}

func (b *CalendarBuilder) events(p LunarBirthday, now time.Time) []*ical.Event {
	from := max(now.Year()-config.ICSYearWindow, p.Lunar.Year)
	to := now.Year() + config.ICSYearWindow
	if from > to {
		return nil
	}

	input := fmt.Sprintf(config.FormatHashInput, p.Name, p.Lunar.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

	var events []*ical.Event
	for _, occ := range b.Table.LunarOccurrences(p.Lunar.Month, p.Lunar.Day, p.Leap, from, to) {
		age := occ.Solar.Year - p.SolarYear + 1

		summary := fmt.Sprintf(config.FallbackSummary, p.Name, age)
		if b.FormatSummary != nil {
			summary = b.FormatSummary(p.Name, age)
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, occ.Lunar.Year, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropCategories, config.ICalCategory)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(time.Date(occ.Solar.Year, time.Month(occ.Solar.Month), occ.Solar.Day, 0, 0, 0, 0, time.UTC))
		event.Props.Set(dtStartProp)

		events = append(events, event)
	}
	return events
}
