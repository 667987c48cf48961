package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Config is the root configuration for MailPilot.
type Config struct {
	General    GeneralConfig    `json:"general"`
	Telegram   TelegramConfig   `json:"telegram"`
	Webhook    WebhookConfig    `json:"webhook"`
	Google     GoogleConfig     `json:"google"`
	Mail       MailConfig       `json:"mail"`
	Completion CompletionConfig `json:"completion"`
	Sheets     SheetsConfig     `json:"sheets"`
	Ledger     LedgerConfig     `json:"ledger"`
	Prompt     PromptConfig     `json:"prompt"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile,omitempty"`
}

type TelegramConfig struct {
	Token     string         `json:"token"`
	ParseMode string         `json:"parseMode,omitempty"`
	AllowFrom FlexStringList `json:"allowFrom,omitempty"` // chat IDs (empty = allow all)
}

type WebhookConfig struct {
	Port int    `json:"port"`
	Path string `json:"path"`
}

// GoogleConfig carries the refresh-token credentials shared by Gmail and
// Sheets. Values support ${VAR} expansion so secrets can stay in the
// environment.
type GoogleConfig struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RefreshToken string `json:"refreshToken"`
}

type MailConfig struct {
	MaxResults        int64    `json:"maxResults"`
	SenderSuggestions []string `json:"senderSuggestions,omitempty"`
}

type CompletionConfig struct {
	APIKey  string `json:"apiKey"`
	APIBase string `json:"apiBase"`
	Model   string `json:"model"`
}

type SheetsConfig struct {
	SpreadsheetID string `json:"spreadsheetId"`
	WriteRange    string `json:"writeRange"`
}

type LedgerConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath"`
}

type PromptConfig struct {
	ProfilePath string `json:"profilePath,omitempty"`
}

// FlexStringList is a []string that can unmarshal from JSON arrays containing
// both strings and numbers (e.g. ["123", 456] both become "123", "456").
type FlexStringList []string

func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	// Fallback: array of mixed types
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			result = append(result, strconv.FormatInt(int64(n), 10))
			continue
		}
		result = append(result, string(item))
	}
	*f = result
	return nil
}

// Int64s parses the list into chat IDs, skipping entries that are not
// integers.
func (f FlexStringList) Int64s() []int64 {
	var out []int64
	for _, s := range f {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// DefaultConfigDir returns the default config directory (~/.mailpilot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mailpilot"
	}
	return filepath.Join(home, ".mailpilot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Ledger.DBPath = ExpandPath(cfg.Ledger.DBPath)
	cfg.Prompt.ProfilePath = ExpandPath(cfg.Prompt.ProfilePath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Webhook.Port < 0 || cfg.Webhook.Port > 65535 {
		errs = append(errs, "webhook.port must be between 0 and 65535")
	}
	if cfg.Webhook.Path != "" && !strings.HasPrefix(cfg.Webhook.Path, "/") {
		errs = append(errs, "webhook.path must start with /")
	}

	if cfg.Mail.MaxResults < 1 || cfg.Mail.MaxResults > 25 {
		errs = append(errs, "mail.maxResults must be between 1 and 25")
	}

	if cfg.Ledger.Enabled && cfg.Ledger.DBPath == "" {
		errs = append(errs, "ledger.dbPath is required when ledger.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
