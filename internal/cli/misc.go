package cli

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/printout"
)

// newRegionsCmd lists the birth regions.
func newRegionsCmd(_ *App) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the birth regions and their solar time offsets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range engine.Regions() {
				fmt.Fprintf(tw, "%s\t%s\t%+d\n", r.Key(), r.Name(), r.Offset())
			}
			return tw.Flush()
		},
	}
}

// newSlotsCmd lists the preset time slots.
func newSlotsCmd(_ *App) *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List the twelve two-hour birth time slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range engine.Slots() {
				fmt.Fprintf(tw, "%s\t%s\n", s.Key(), s.Label())
			}
			return tw.Flush()
		},
	}
}

// settingFields maps TOML keys to the settings they edit.
var settingFields = map[string]func(*config.Settings) *string{
	"table_path":    func(s *config.Settings) *string { return &s.TablePath },
	"server_port":   func(s *config.Settings) *string { return &s.ServerPort },
	"language":      func(s *config.Settings) *string { return &s.Language },
	"feedback_path": func(s *config.Settings) *string { return &s.FeedbackPath },
	"layout_path":   func(s *config.Settings) *string { return &s.LayoutPath },
	"region":        func(s *config.Settings) *string { return &s.Region },
	"contacts_user": func(s *config.Settings) *string { return &s.ContactsUser },
}

// newSettingsCmd shows and edits the persisted settings.
func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(app.Settings)
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			field, ok := settingFields[args[0]]
			if !ok {
				return fmt.Errorf("%s: %q", config.ErrSettingKey, args[0])
			}
			switch args[0] {
			case "server_port":
				if err := config.ValidatePort(args[1]); err != nil {
					return err
				}
			case "region":
				if _, ok := engine.ParseRegion(args[1]); !ok {
					return fmt.Errorf("%w: %s %q", engine.ErrInvalidOption, config.ErrUnknownRegion, args[1])
				}
			}
			*field(&app.Settings) = args[1]
			return config.SaveSettings(app.settingsPath, app.Settings)
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

// layoutField returns the value addressed by a key such as "grid.top".
func layoutField(l *printout.Layout, key string) (*float64, bool) {
	blockName, attr, ok := strings.Cut(key, ".")
	if !ok {
		return nil, false
	}

	var b *printout.Block
	switch blockName {
	case "birth_date":
		b = &l.BirthDate
	case "grid":
		b = &l.Grid
	case "info":
		b = &l.Info
	default:
		return nil, false
	}

	switch attr {
	case "top":
		return &b.Top, true
	case "left":
		return &b.Left, true
	case "font_size":
		return &b.Font, true
	}
	return nil, false
}

// newLayoutCmd shows, edits and resets the print layout.
func newLayoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show or adjust the print layout",
		Long: `Positions are in millimetres from the top left corner of an A4 sheet,
font sizes in points. Fields are birth_date, grid and info, each with top,
left and font_size (e.g. grid.top).`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current layout as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(printout.LoadLayout(app.Settings.LayoutPath))
		},
	}

	set := &cobra.Command{
		Use:   "set FIELD VALUE",
		Short: "Change one position or font size and save the layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			l := printout.LoadLayout(app.Settings.LayoutPath)
			field, ok := layoutField(&l, args[0])
			if !ok {
				return fmt.Errorf("%s: %q", config.ErrLayoutField, args[0])
			}
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrLayoutField, err)
			}
			*field = v
			return printout.SaveLayout(app.Settings.LayoutPath, l)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Write the default layout",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return printout.SaveLayout(app.Settings.LayoutPath, printout.DefaultLayout())
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

// newVersionCmd prints the build version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput, config.BinaryName, config.Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
