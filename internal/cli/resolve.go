package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/i18n"
	"github.com/tartampluch/go-manse/internal/printout"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

// queryFlags are the birth query options shared by resolve and print.
type queryFlags struct {
	time     string
	slot     string
	region   string
	calendar string
	blood    string
	rhMinus  bool
}

// register binds the birth query flags to cmd.
func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.time, config.FlagTime, "", config.FlagDescTime)
	fl.StringVar(&f.slot, config.FlagSlot, "", config.FlagDescSlot)
	fl.StringVar(&f.region, config.FlagRegion, "", config.FlagDescRegion)
	fl.StringVar(&f.calendar, config.FlagCalendar, "", config.FlagDescCalendar)
	fl.StringVar(&f.blood, config.FlagBlood, "", config.FlagDescBlood)
	fl.BoolVar(&f.rhMinus, config.FlagRhMinus, false, config.FlagDescRhMinus)
}

// query builds the birth query. The region falls back to the settings.
func (f *queryFlags) query(app *App, date string) (engine.BirthQuery, error) {
	region := f.region
	if region == "" {
		region = app.Settings.Region
	}
	return engine.QueryInput{
		Date:       date,
		Time:       f.time,
		Slot:       f.slot,
		Region:     region,
		Calendar:   f.calendar,
		BloodType:  f.blood,
		RhNegative: f.rhMinus,
	}.Query()
}

// resolveArgs runs the resolver for a command taking the date as its argument.
// Resolution errors are shown in the configured language.
func resolveArgs(cmd *cobra.Command, app *App, qf *queryFlags, date string) (*engine.ResultRecord, error) {
	q, err := qf.query(app, date)
	if err != nil {
		return nil, userError(app.localizer(), err)
	}

	resolver, _, err := app.resolver(cmd.Context())
	if err != nil {
		return nil, err
	}

	rec, err := resolver.Resolve(cmd.Context(), q)
	if err != nil {
		return nil, userError(app.localizer(), err)
	}
	return rec, nil
}

// userError replaces err with its translated message, keeping it for errors.Is.
func userError(loc *i18n.Localizer, err error) error {
	key := engine.MessageKey(err)
	if key == config.TKeyErrInternal {
		return err
	}
	return fmt.Errorf("%s: %w", loc.Msg(key), err)
}

// newResolveCmd prints the four pillars of one birth.
func newResolveCmd(app *App) *cobra.Command {
	var (
		qf     queryFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve YYYYMMDD",
		Short: "Show the four pillars of a birth",
		Example: `  go-manse resolve 19730819
  go-manse resolve 19730819 --time 1430 --region seoul
  go-manse resolve 20230201 --calendar lunar-leap --slot zi --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := resolveArgs(cmd, app, &qf, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			writeResult(cmd.OutOrStdout(), app.localizer(), rec)
			return nil
		},
	}

	qf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	return cmd
}

// writeResult prints a record as labelled lines, hour pillar first.
func writeResult(w io.Writer, loc *i18n.Localizer, rec *engine.ResultRecord) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%s: %s\n", label, value)
	}
	pillar := func(p sexagenary.Pillar) string {
		return fmt.Sprintf("%s (%s)", p.Hanja(), p.Hangul())
	}

	line(loc.Msg(config.TKeyLblBirthDate), fmt.Sprintf("%s (%s)", rec.BirthDate, loc.Calendar(rec.Calendar)))
	line(loc.Msg(config.TKeyLblSolarDate), rec.Entry.Solar.String())
	lunar := rec.Entry.Lunar.String()
	if rec.Entry.Leap {
		lunar += " " + loc.Calendar(almanac.LunarLeap)
	}
	line(loc.Msg(config.TKeyLblLunarDate), lunar)

	if rec.Pillars.Hour != nil {
		line(loc.Msg(config.TKeyPillarHour), pillar(*rec.Pillars.Hour))
	}
	line(loc.Msg(config.TKeyPillarDay), pillar(rec.Pillars.Day))
	line(loc.Msg(config.TKeyPillarMonth), pillar(rec.Pillars.Month))
	line(loc.Msg(config.TKeyPillarYear), pillar(rec.Pillars.Year))

	line(loc.Msg(config.TKeyLblAge), loc.Age(rec.Age))
	line(loc.Msg(config.TKeyLblZodiac), loc.Zodiac(rec.Zodiac))
	if rec.BloodType != "" {
		line(loc.Msg(config.TKeyLblBlood), rec.BloodType)
	}
	if rec.SolarTime != nil {
		line(loc.Msg(config.TKeyLblSolarTime), rec.SolarTime.Format(config.DateLayoutISO+" "+config.TimeLayoutSlot))
	}
}

// newPrintCmd renders the print page of one birth.
func newPrintCmd(app *App) *cobra.Command {
	var (
		qf         queryFlags
		output     string
		layoutPath string
	)

	cmd := &cobra.Command{
		Use:   "print YYYYMMDD",
		Short: "Write the A4 print page of a birth as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := resolveArgs(cmd, app, &qf, args[0])
			if err != nil {
				return err
			}

			if layoutPath == "" {
				layoutPath = app.Settings.LayoutPath
			}
			layout := printout.LoadLayout(layoutPath)

			if output == "" {
				return printout.Render(cmd.OutOrStdout(), rec, layout)
			}
			f, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
			if err != nil {
				return err
			}
			if err := printout.Render(f, rec, layout); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}

	qf.register(cmd)
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	cmd.Flags().StringVar(&layoutPath, config.FlagLayout, "", config.FlagDescLayout)
	return cmd
}
