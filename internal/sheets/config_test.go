package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		modify  func(*Config)
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid service account",
			modify: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
			},
		},
		{
			name: "valid oauth",
			modify: func(c *Config) {
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "refresh"
			},
		},
		{
			name:    "no auth",
			modify:  func(*Config) {},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "both auth methods",
			modify: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "refresh"
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "missing sheet name",
			modify: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.SheetName = ""
			},
			wantErr: true,
			errMsg:  "sheet name is required",
		},
		{
			name: "zero batch size",
			modify: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.BatchSize = 0
			},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry",
			modify: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.RetryAttempts = -1
			},
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.EnableFormatting)
	assert.Equal(t, DefaultSpreadsheetName, cfg.SpreadsheetName)
	assert.Equal(t, "Ledger", cfg.SheetName)
	assert.Positive(t, cfg.BatchSize)
}
