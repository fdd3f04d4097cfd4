package tui

import (
	"time"

	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme   themes.Theme
	Now     func() time.Time
	Changes <-chan *notify.ChangeMessage
	Filter  ledger.Filter
	Timeout time.Duration
	Width   int
	Height  int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:   themes.Default,
		Now:     time.Now,
		Filter:  ledger.FilterAll,
		Timeout: 30 * time.Second,
		Width:   80,
		Height:  24,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithFilter sets the filter shown first.
func WithFilter(filter ledger.Filter) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// WithClock overrides the clock used for current-month figures.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithChanges reloads the dashboard whenever a change message arrives on ch.
func WithChanges(ch <-chan *notify.ChangeMessage) Option {
	return func(c *Config) {
		c.Changes = ch
	}
}
