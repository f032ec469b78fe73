package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds the user-editable runtime configuration.
// It is read once at startup: defaults, then the TOML file, then environment.
type Settings struct {
	TablePath    string `toml:"table_path"`
	ServerPort   string `toml:"server_port"`
	Language     string `toml:"language"`
	FeedbackPath string `toml:"feedback_path"`
	LayoutPath   string `toml:"layout_path"`
	Region       string `toml:"region"`

	// ContactsUser is the account used for remote vCard sources.
	// Its password lives in the OS keyring under KeyringService.
	ContactsUser string `toml:"contacts_user"`
}

// DefaultSettings returns settings rooted in the user's config directory.
// dir may be empty when no config directory can be determined.
func DefaultSettings(dir string) Settings {
	return Settings{
		TablePath:    DefaultTableFile,
		ServerPort:   DefaultPort,
		Language:     DefaultLanguage,
		FeedbackPath: filepath.Join(dir, FeedbackFileName),
		LayoutPath:   filepath.Join(dir, LayoutFileName),
		Region:       DefaultRegion,
	}
}

// AppConfigDir returns (and creates) the application directory under os.UserConfigDir.
func AppConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	dir := filepath.Join(base, AppID)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	return dir, nil
}

// LoadSettings reads path over the defaults. A missing file is not an error.
// Environment variables take precedence over the file.
func LoadSettings(path string, defaults Settings) (Settings, error) {
	s := defaults

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// keep defaults
	case err != nil:
		return defaults, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	default:
		if err := toml.Unmarshal(data, &s); err != nil {
			return defaults, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
		}
	}

	s.applyEnv()

	if err := ValidatePort(s.ServerPort); err != nil {
		return defaults, err
	}

	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompSettings,
		LogKeyFile, path,
	)
	return s, nil
}

// SaveSettings writes the settings as TOML with owner-only permissions.
func SaveSettings(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	if err := os.WriteFile(path, data, FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsSave, err)
	}
	return nil
}

func (s *Settings) applyEnv() {
	s.TablePath = getEnvString(EnvTable, s.TablePath)
	s.ServerPort = getEnvString(EnvPort, s.ServerPort)
	s.Language = getEnvString(EnvLanguage, s.Language)
	s.FeedbackPath = getEnvString(EnvFeedback, s.FeedbackPath)
	s.Region = getEnvString(EnvRegion, s.Region)
}

// ValidatePort checks that port is a number in the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
