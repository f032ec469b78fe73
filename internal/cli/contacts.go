package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
)

// sourceConfig turns a file path or an http(s) URL into a vCard source.
// Remote sources read the password for user from the keyring.
func (a *App) sourceConfig(source, user string) engine.SourceConfig {
	lower := strings.ToLower(source)
	if !strings.HasPrefix(lower, config.SchemeHTTP+"://") && !strings.HasPrefix(lower, config.SchemeHTTPS+"://") {
		return engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: source}
	}

	if user == "" {
		user = a.Settings.ContactsUser
	}
	cfg := engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: source, WebUser: user}
	if user != "" && a.Passwords != nil {
		if p, err := a.Passwords.Get(config.KeyringService, user); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyUser, user,
				config.LogKeyError, err,
			)
		}
	}
	return cfg
}

// resolveContacts resolves every contact of the address book and returns a
// calendar builder for the results.
func (a *App) resolveContacts(ctx context.Context, source, user string) ([]engine.ContactResult, *engine.CalendarBuilder, error) {
	resolver, table, err := a.resolver(ctx)
	if err != nil {
		return nil, nil, err
	}
	cr := &engine.ContactResolver{Resolver: resolver, Fetcher: a.Fetcher}
	results, err := cr.Run(ctx, a.sourceConfig(source, user))
	if err != nil {
		return nil, nil, err
	}
	builder := &engine.CalendarBuilder{Table: table, Clock: a.Clock, FormatSummary: a.localizer().EventSummary}
	return results, builder, nil
}

// newContactsCmd resolves the birthdays of an address book.
func newContactsCmd(app *App) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "contacts FILE|URL",
		Short: "Resolve the birthdays of a vCard address book",
		Long: `Reads every card with a full BDAY and prints its pillars. Dates marked
with CALSCALE=chinese, korean or lunar are looked up as lunar dates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, _, err := app.resolveContacts(cmd.Context(), args[0], user)
			if err != nil {
				return err
			}

			loc := app.localizer()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range results {
				if r.Record == nil {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.BirthDate, r.Err)
					continue
				}
				p := r.Record.Pillars
				fmt.Fprintf(tw, "%s\t%s\t%s %s %s\t%s\n",
					r.Name, r.BirthDate, p.Year, p.Month, p.Day, loc.Zodiac(r.Record.Zodiac))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	cmd.AddCommand(newPasswordCmd(app))
	return cmd
}

// newPasswordCmd stores the password of a remote address book in the keyring.
func newPasswordCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "password USER",
		Short: "Store the password of a remote address book in the OS keyring",
		Long:  "Reads the password from the first line of standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("%s: %w", config.ErrPassSave, err)
			}
			pass := strings.TrimRight(line, "\r\n")

			if err := app.Passwords.Set(config.KeyringService, args[0], pass); err != nil {
				return fmt.Errorf("%s: %w", config.ErrPassSave, err)
			}
			slog.Info(config.MsgPassSaved,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyUser, args[0],
			)
			return nil
		},
	}
}

// newICSCmd writes the lunar birthday calendar of one birth.
func newICSCmd(app *App) *cobra.Command {
	var (
		qf       queryFlags
		name     string
		contacts string
		user     string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "ics [YYYYMMDD]",
		Short: "Export lunar birthdays as an iCalendar file",
		Long: `Writes all-day events on the solar dates of a lunar birthday for the
previous, current and next year. Give a birth date for one person, or
--contacts for every resolvable card of an address book.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				birthdays []engine.LunarBirthday
				builder   *engine.CalendarBuilder
			)
			switch {
			case contacts != "":
				results, b, err := app.resolveContacts(ctx, contacts, user)
				if err != nil {
					return err
				}
				birthdays, builder = engine.LunarBirthdays(results), b
			case len(args) == 1:
				rec, err := resolveArgs(cmd, app, &qf, args[0])
				if err != nil {
					return err
				}
				_, table, err := app.resolver(ctx)
				if err != nil {
					return err
				}
				if name == "" {
					name = config.FallbackName
				}
				birthdays = []engine.LunarBirthday{engine.BirthdayFromRecord(name, rec)}
				builder = &engine.CalendarBuilder{Table: table, Clock: app.Clock, FormatSummary: app.localizer().EventSummary}
			default:
				return errors.New("a birth date or --contacts is required")
			}

			data, _, err := builder.Build(ctx, birthdays)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, config.FilePermUserRW)
		},
	}

	qf.register(cmd)
	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&contacts, config.FlagContacts, "", config.FlagDescContacts)
	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	return cmd
}
