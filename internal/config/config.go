package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	DatabasePath string `json:"database_path"`
	APIPort      string `json:"api_port"`
	APIKey       string `json:"api_key"`      // key expected in X-API-Key for mutating endpoints
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	CORSOrigins  string `json:"cors_origins"` // comma separated, * for all

	// Mailbox provider
	GmailCredentials string `json:"gmail_credentials"` // OAuth client credentials JSON
	GmailToken       string `json:"gmail_token"`       // cached token JSON

	// AI model
	AIProvider string `json:"ai_provider"`
	AIAPIKey   string `json:"ai_api_key"`
	AIModel    string `json:"ai_model"`
	AIBaseURL  string `json:"ai_base_url"`

	// Sync tuning
	SyncPageSize  int `json:"sync_page_size"`
	SyncMaxEmails int `json:"sync_max_emails"` // 0 means no budget
	SyncInterval  int `json:"sync_interval"`   // minutes between background syncs, 0 disables
}

// Default configuration values
const (
	DefaultDatabasePath     = "storage/mailmind.db"
	DefaultAPIPort          = "8080"
	DefaultLogLevel         = "INFO"
	DefaultDataDir          = "storage"
	DefaultCORSOrigins      = "*"
	DefaultGmailCredentials = "credentials.json"
	DefaultGmailToken       = "token.json"
	DefaultSyncPageSize     = 100
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:     DefaultDatabasePath,
		APIPort:          DefaultAPIPort,
		LogLevel:         DefaultLogLevel,
		DataDir:          DefaultDataDir,
		CORSOrigins:      DefaultCORSOrigins,
		GmailCredentials: DefaultGmailCredentials,
		GmailToken:       DefaultGmailToken,
		SyncPageSize:     DefaultSyncPageSize,
	}

	// Config file is optional
	_ = cfg.loadFromFile()

	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from config.json file
func (c *Config) loadFromFile() error {
	configPaths := []string{
		"config.json",
		filepath.Join(c.DataDir, "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return json.Unmarshal(data, c)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv("MAILMIND_DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv("MAILMIND_API_PORT"); val != "" {
		c.APIPort = val
	}
	if val := os.Getenv("MAILMIND_API_KEY"); val != "" {
		c.APIKey = val
	}
	if val := os.Getenv("MAILMIND_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("MAILMIND_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("MAILMIND_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = val
	}
	if val := os.Getenv("MAILMIND_GMAIL_CREDENTIALS"); val != "" {
		c.GmailCredentials = val
	}
	if val := os.Getenv("MAILMIND_GMAIL_TOKEN"); val != "" {
		c.GmailToken = val
	}
	if val := os.Getenv("MAILMIND_AI_PROVIDER"); val != "" {
		c.AIProvider = val
	}
	if val := os.Getenv("MAILMIND_AI_API_KEY"); val != "" {
		c.AIAPIKey = val
	}
	if val := os.Getenv("MAILMIND_AI_MODEL"); val != "" {
		c.AIModel = val
	}
	if val := os.Getenv("MAILMIND_AI_BASE_URL"); val != "" {
		c.AIBaseURL = val
	}
	if val := os.Getenv("MAILMIND_SYNC_PAGE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.SyncPageSize = n
		}
	}
	if val := os.Getenv("MAILMIND_SYNC_MAX_EMAILS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			c.SyncMaxEmails = n
		}
	}
	if val := os.Getenv("MAILMIND_SYNC_INTERVAL"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			c.SyncInterval = n
		}
	}
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
