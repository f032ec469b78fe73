package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/feedback"
	"github.com/tartampluch/go-manse/internal/metrics"
	"github.com/tartampluch/go-manse/internal/printout"
	"github.com/tartampluch/go-manse/internal/server"
)

// newServeCmd runs the HTTP server until interrupted.
func newServeCmd(app *App) *cobra.Command {
	var (
		port     string
		contacts string
		user     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API on 127.0.0.1",
		Long: `Serves the JSON API under /api, the print page at /print and a lunar
birthday calendar at /calendar.ics. With --contacts the calendar is rebuilt
from the address book once a day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if port == "" {
				port = app.Settings.ServerPort
			}
			if err := config.ValidatePort(port); err != nil {
				return err
			}

			resolver, table, err := app.resolver(ctx)
			if err != nil {
				return err
			}

			builder := &engine.CalendarBuilder{Table: table, Clock: app.Clock, FormatSummary: app.localizer().EventSummary}
			srv := server.New(port, resolver, builder, app.tr)
			srv.SetLayout(printout.LoadLayout(app.Settings.LayoutPath))
			if err := printout.WatchLayout(ctx, app.Settings.LayoutPath, srv.SetLayout); err != nil {
				slog.Warn(config.ErrLayoutWatch,
					config.LogKeyComponent, config.CompCLI,
					config.LogKeyError, err,
				)
			}

			store, err := feedback.Open(ctx, app.Settings.FeedbackPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			srv.Feedback = store

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			rec := metrics.NewCollector(reg)
			srv.Metrics = rec
			srv.Gatherer = reg

			if contacts != "" {
				cr := &engine.ContactResolver{Resolver: resolver, Fetcher: app.Fetcher}
				go syncLoop(ctx, srv, cr, builder, rec, app.sourceConfig(contacts, user), config.DefaultICalRefresh)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&port, config.FlagPort, "", config.FlagDescPort)
	cmd.Flags().StringVar(&contacts, config.FlagContacts, "", config.FlagDescContacts)
	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	return cmd
}

// syncLoop rebuilds the cached calendar now and then every interval until
// ctx is done. A failed sync keeps the previous calendar.
func syncLoop(ctx context.Context, srv *server.Server, cr *engine.ContactResolver, builder *engine.CalendarBuilder,
	rec metrics.Recorder, cfg engine.SourceConfig, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		syncCalendar(ctx, srv, cr, builder, rec, cfg)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// syncCalendar rebuilds the served calendar from the address book once.
func syncCalendar(ctx context.Context, srv *server.Server, cr *engine.ContactResolver, builder *engine.CalendarBuilder,
	rec metrics.Recorder, cfg engine.SourceConfig) {
	log := slog.With(
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyMode, cfg.Mode,
	)

	results, err := cr.Run(ctx, cfg)
	if err != nil {
		log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		return
	}
	data, count, err := builder.Build(ctx, engine.LunarBirthdays(results))
	if err != nil {
		log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		return
	}

	srv.Update(data)
	rec.RecordCalendarEvents(count)
	log.Info(config.MsgSyncDone, config.LogKeyEvents, count)
}
