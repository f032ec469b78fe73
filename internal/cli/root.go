// Package cli implements the go-manse command line.
package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/i18n"
)

// PasswordStore reads and writes secrets. The OS keyring implements it.
type PasswordStore interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
}

// osKeyring stores passwords in the operating system keychain.
type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, password string) error { return keyring.Set(service, user, password) }

// App carries the dependencies and global flags shared by every command.
type App struct {
	Clock     engine.Clock
	Fetcher   engine.VCardFetcher
	Passwords PasswordStore

	// SetupLogging is called once flags are parsed. The returned closer, if
	// any, is closed when the command ends.
	SetupLogging func(debug bool) io.Closer

	Settings     config.Settings
	settingsPath string

	debug     bool
	tablePath string
	strict    bool
	lang      string

	tr        *i18n.Translator
	table     *almanac.Table
	logCloser io.Closer
}

// NewApp returns an App wired to the real clock, network and keyring.
func NewApp() *App {
	return &App{
		Clock:     engine.RealClock{},
		Fetcher:   engine.NewHTTPFetcher(),
		Passwords: osKeyring{},
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   config.BinaryName,
		Short: "Four Pillars (saju) calendar for births between 1900 and 2050",
		Long: `go-manse resolves a birth date and time into its year, month, day and
hour pillars using a precomputed solar/lunar calendar table.

The table is a SQLite file with a calenda_data table. Birth times can be
corrected to true solar time for the region of birth.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app.logCloser != nil {
				_ = app.logCloser.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&app.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.StringVar(&app.tablePath, config.FlagTable, "", config.FlagDescTable)
	pf.StringVar(&app.settingsPath, config.FlagConfig, "", config.FlagDescConfig)
	pf.StringVar(&app.lang, config.FlagLang, "", config.FlagDescLang)
	pf.BoolVar(&app.strict, config.FlagStrict, false, config.FlagDescStrict)

	root.AddCommand(
		newResolveCmd(app),
		newPrintCmd(app),
		newServeCmd(app),
		newContactsCmd(app),
		newICSCmd(app),
		newFeedbackCmd(app),
		newRegionsCmd(app),
		newSlotsCmd(app),
		newSettingsCmd(app),
		newLayoutCmd(app),
		newVersionCmd(),
	)
	return root
}

// init sets up logging and reads the settings file, then applies flag overrides.
func (a *App) init() error {
	if a.SetupLogging != nil {
		a.logCloser = a.SetupLogging(a.debug)
	}

	dir, err := config.AppConfigDir()
	if err != nil {
		slog.Warn(err.Error(), config.LogKeyComponent, config.CompCLI)
		dir = ""
	}
	if a.settingsPath == "" {
		a.settingsPath = filepath.Join(dir, config.SettingsFileName)
	}

	s, err := config.LoadSettings(a.settingsPath, config.DefaultSettings(dir))
	if err != nil {
		return err
	}
	if a.tablePath != "" {
		s.TablePath = a.tablePath
	}
	if a.lang != "" {
		s.Language = a.lang
	}
	a.Settings = s
	a.tr = i18n.New()
	return nil
}

// localizer returns the localizer for the configured language.
func (a *App) localizer() *i18n.Localizer {
	return a.tr.Localizer(a.Settings.Language)
}

// loadTable reads the calendar table on first use.
func (a *App) loadTable(ctx context.Context) (*almanac.Table, error) {
	if a.table != nil {
		return a.table, nil
	}
	var opts []almanac.Option
	if a.strict {
		opts = append(opts, almanac.WithStrict())
	}
	t, err := almanac.Load(ctx, a.Settings.TablePath, opts...)
	if err != nil {
		return nil, err
	}
	a.table = t
	return t, nil
}

// resolver builds a resolver over the loaded table.
func (a *App) resolver(ctx context.Context) (*engine.Resolver, *almanac.Table, error) {
	table, err := a.loadTable(ctx)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewResolver(table, a.Clock), table, nil
}
