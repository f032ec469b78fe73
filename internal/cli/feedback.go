package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/feedback"
)

// newFeedbackCmd manages the local feedback log.
func newFeedbackCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Submit and review user feedback",
	}

	// withStore opens the feedback database for the duration of fn.
	withStore := func(ctx context.Context, fn func(*feedback.Store) error) error {
		store, err := feedback.Open(ctx, app.Settings.FeedbackPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return fn(store)
	}

	submit := &cobra.Command{
		Use:   "submit TEXT...",
		Short: "Record a feedback message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := app.localizer()
			return withStore(cmd.Context(), func(s *feedback.Store) error {
				e, err := s.Submit(cmd.Context(), strings.Join(args, " "))
				if errors.Is(err, feedback.ErrEmptyFeedback) {
					return fmt.Errorf("%s: %w", loc.Msg(config.TKeyFeedbackEmpty), err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", loc.Msg(config.TKeyFeedbackThanks), e.ID)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List feedback, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(s *feedback.Store) error {
				entries, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), app.localizer().Msg(config.TKeyFeedbackNone))
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						e.ID, e.CreatedAt.Local().Format(config.DateLayoutISO+" "+config.TimeLayoutSlot), e.Status, e.Preview())
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(submit, list,
		newFeedbackStatusCmd(app, withStore, "resolve", "Mark a feedback entry as resolved", feedback.StatusResolved),
		newFeedbackStatusCmd(app, withStore, "reopen", "Mark a feedback entry as open again", feedback.StatusOpen),
	)
	return cmd
}

// newFeedbackStatusCmd builds a subcommand that sets an entry to status.
func newFeedbackStatusCmd(app *App, withStore func(context.Context, func(*feedback.Store) error) error,
	use, short string, status feedback.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrFeedbackNone, err)
			}
			return withStore(cmd.Context(), func(s *feedback.Store) error {
				err := s.SetStatus(cmd.Context(), id, status)
				if errors.Is(err, feedback.ErrNotFound) {
					return fmt.Errorf("%s: %w", app.localizer().Msg(config.TKeyFeedbackMiss), err)
				}
				return err
			})
		},
	}
}
