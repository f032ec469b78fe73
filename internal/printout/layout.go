package printout

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/tartampluch/go-manse/internal/config"
)

// Block places one text block on the page.
type Block struct {
	Top  float64 `toml:"top"`       // millimetres from the top edge
	Left float64 `toml:"left"`      // millimetres from the left edge
	Font float64 `toml:"font_size"` // points
}

// Layout positions the three printed blocks on an A4 sheet.
type Layout struct {
	BirthDate Block `toml:"birth_date"`
	Grid      Block `toml:"grid"`
	Info      Block `toml:"info"`
}

// DefaultLayout matches the pre-printed forms in use.
func DefaultLayout() Layout {
	return Layout{
		BirthDate: Block{Top: config.DefaultBirthTop, Left: config.DefaultBirthLeft, Font: config.DefaultBirthFont},
		Grid:      Block{Top: config.DefaultGridTop, Left: config.DefaultGridLeft, Font: config.DefaultGridFont},
		Info:      Block{Top: config.DefaultInfoTop, Left: config.DefaultInfoLeft, Font: config.DefaultInfoFont},
	}
}

// LoadLayout reads a layout file. A missing file yields the defaults; an
// unreadable or malformed one yields the defaults and a warning, so printing
// keeps working.
func LoadLayout(path string) Layout {
	log := slog.With(
		config.LogKeyComponent, config.CompPrint,
		config.LogKeyFile, path,
	)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug(config.MsgLayoutDefault)
		return DefaultLayout()
	}
	if err != nil {
		log.Warn(config.ErrLayoutLoad, config.LogKeyError, err)
		return DefaultLayout()
	}

	l := DefaultLayout()
	if err := toml.Unmarshal(data, &l); err != nil {
		log.Warn(config.ErrLayoutLoad, config.LogKeyError, err)
		return DefaultLayout()
	}
	return l
}

// SaveLayout writes l as TOML with owner-only permissions.
func SaveLayout(path string, l Layout) error {
	data, err := toml.Marshal(l)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrLayoutSave, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrLayoutSave, err)
	}
	if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrLayoutSave, err)
	}
	return nil
}
