// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"
)

// Config holds the full server configuration
type Config struct {
	Addr         string `env:"TEAMDESK_ADDR"      envDefault:":8080"`
	DatabasePath string `env:"TEAMDESK_DB_PATH"   envDefault:"teamdesk.db"`
	LogLevel     string `env:"TEAMDESK_LOG_LEVEL" envDefault:"info"`

	// Отсутствие секрета - фатальная ошибка конфигурации на старте,
	// а не ошибка времени запроса
	JWTSecret string `env:"TEAMDESK_JWT_SECRET,required"`

	// BaseURL используется для сборки redirect URL внешнего провайдера
	BaseURL string `env:"TEAMDESK_BASE_URL" envDefault:"http://localhost:8080"`

	// DashboardURL - куда редиректит callback после link/ошибки
	DashboardURL string `env:"TEAMDESK_DASHBOARD_URL" envDefault:"/dashboard"`

	Vault VaultConfig
}

// VaultConfig holds the external notes provider configuration.
// ClientID/ClientSecret are optional: without them the vault routes answer
// ErrNotConfigured instead of the whole server refusing to start.
type VaultConfig struct {
	ClientID     string   `env:"TEAMDESK_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"TEAMDESK_OAUTH_CLIENT_SECRET"`
	AuthURL      string   `env:"TEAMDESK_OAUTH_AUTH_URL"  envDefault:"https://login.microsoftonline.com/common/oauth2/v2.0/authorize"`
	TokenURL     string   `env:"TEAMDESK_OAUTH_TOKEN_URL" envDefault:"https://login.microsoftonline.com/common/oauth2/v2.0/token"`
	RedirectURL  string   `env:"TEAMDESK_OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"TEAMDESK_OAUTH_SCOPES"    envSeparator:"," envDefault:"Files.Read,Files.Read.All,offline_access"`
	DriveURL     string   `env:"TEAMDESK_DRIVE_URL"       envDefault:"https://graph.microsoft.com/v1.0"`
	Path         string   `env:"TEAMDESK_VAULT_PATH"      envDefault:"Obsidian"`
}

// Load parses configuration from environment variables.
// Fails fast on a missing required value.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Vault.RedirectURL == "" {
		cfg.Vault.RedirectURL = cfg.BaseURL + "/api/v1/vault/callback"
	}

	return cfg, nil
}

// Enabled reports whether provider credentials are present
func (v VaultConfig) Enabled() bool {
	return v.ClientID != "" && v.ClientSecret != ""
}

// OAuth builds the oauth2 client config for the provider.
// Returns nil when the integration is not configured.
func (v VaultConfig) OAuth() *oauth2.Config {
	if !v.Enabled() {
		return nil
	}

	return &oauth2.Config{
		ClientID:     v.ClientID,
		ClientSecret: v.ClientSecret,
		RedirectURL:  v.RedirectURL,
		Scopes:       v.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  v.AuthURL,
			TokenURL: v.TokenURL,
		},
	}
}
