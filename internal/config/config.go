package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/pointbook/internal/api"
	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/Veraticus/pointbook/internal/sheets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger sources.
const (
	SourceSQLite = "sqlite"
	SourceAPI    = "api"
)

// EnvPrefix prefixes every environment override, e.g. POINTBOOK_API_TOKEN.
const EnvPrefix = "POINTBOOK"

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", SourceSQLite)
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.retry_attempts", service.DefaultRetryOptions().MaxAttempts)
	v.SetDefault("notify.exchange", notify.DefaultExchange)
	v.SetDefault("sheets.sheet_name", sheets.DefaultConfig().SheetName)
	v.SetDefault("sheets.spreadsheet_name", sheets.DefaultSpreadsheetName)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// BindEnv makes every key overridable from POINTBOOK_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		slog.Debug("loaded environment file", "path", p)
	}
	return nil
}

// Source returns the configured ledger source.
func Source(v *viper.Viper) (string, error) {
	source := strings.ToLower(strings.TrimSpace(v.GetString("source")))
	switch source {
	case SourceSQLite, SourceAPI:
		return source, nil
	default:
		return "", fmt.Errorf("%w: source must be %q or %q, got %q",
			common.ErrInvalidConfig, SourceSQLite, SourceAPI, source)
	}
}

// DatabasePath returns the configured SQLite path with ~ expanded.
func DatabasePath(v *viper.Viper) string {
	if p := v.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	return DefaultDatabasePath()
}

// LoadAPIConfig reads the api.* keys.
func LoadAPIConfig(v *viper.Viper) (api.Config, error) {
	retry := service.DefaultRetryOptions()
	if n := v.GetInt("api.retry_attempts"); n > 0 {
		retry.MaxAttempts = n
	}

	cfg := api.Config{
		BaseURL: strings.TrimSpace(v.GetString("api.base_url")),
		Token:   strings.TrimSpace(v.GetString("api.token")),
		Timeout: v.GetDuration("api.timeout"),
		Retry:   retry,
	}

	if cfg.BaseURL == "" {
		return api.Config{}, fmt.Errorf("%w: api.base_url is required when source is %q",
			common.ErrMissingConfig, SourceAPI)
	}
	if cfg.Timeout < 0 {
		return api.Config{}, fmt.Errorf("%w: api.timeout cannot be negative", common.ErrInvalidConfig)
	}
	return cfg, nil
}

// LoadNotifyConfig reads the notify.* keys. An empty url disables notifications.
func LoadNotifyConfig(v *viper.Viper) notify.Config {
	return notify.Config{
		URL:      strings.TrimSpace(v.GetString("notify.url")),
		Exchange: v.GetString("notify.exchange"),
	}
}

// LoadSheetsConfig loads Google Sheets configuration. Keys under sheets.*
// take precedence over the GOOGLE_SHEETS_* environment variables.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	pick := func(key, env string) string {
		if val := v.GetString(key); val != "" {
			return val
		}
		return os.Getenv(env)
	}

	cfg.ServiceAccountPath = ExpandPath(pick("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	cfg.ClientID = pick("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	cfg.ClientSecret = pick("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	cfg.RefreshToken = pick("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	cfg.SpreadsheetID = pick("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID")
	if name := pick("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		cfg.SpreadsheetName = name
	}
	if name := v.GetString("sheets.sheet_name"); name != "" {
		cfg.SheetName = name
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: sheets: %w", common.ErrInvalidConfig, err)
	}

	return &cfg, nil
}
