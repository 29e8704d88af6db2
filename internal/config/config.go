package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/mozhi-it/LAN-Transfer/internal/keybinds"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultServerAddress is used when no address is configured and none is typed
	DefaultServerAddress = "127.0.0.1:5000"
	// DefaultPort is appended to addresses given without one
	DefaultPort = 5000
)

var (
	// ConfigDir is the configuration directory (~/.config/lantransfer)
	ConfigDir string

	// DatabasePath is the SQLite database file for transfer history
	DatabasePath string

	// LogPath is the default log file of the interactive client
	LogPath string
)

// Config represents the complete lantransfer configuration
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	User     UserConfig      `mapstructure:"user"`
	Poll     PollConfig      `mapstructure:"poll"`
	Client   ClientConfig    `mapstructure:"client"`
	Download DownloadConfig  `mapstructure:"download"`
	TUI      TUIConfig       `mapstructure:"tui"`
	History  HistoryConfig   `mapstructure:"history"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Serve    ServeConfig     `mapstructure:"serve"`
	Keys     keybinds.Config `mapstructure:"keys"`
}

// ServerConfig locates the server the client talks to
type ServerConfig struct {
	// Address is "host[:port]"; empty means ask at startup
	Address string `mapstructure:"address"`
}

// UserConfig holds the chat identity
type UserConfig struct {
	// Name is the sender name attached to messages (max 20 characters)
	Name string `mapstructure:"name"`
}

// PollConfig controls the background message poller
type PollConfig struct {
	IntervalMs int `mapstructure:"interval_ms"`
}

// ClientConfig controls the HTTP client
type ClientConfig struct {
	// ControlTimeout bounds JSON requests
	ControlTimeout time.Duration `mapstructure:"control_timeout"`
	// TransferTimeout bounds uploads and downloads
	TransferTimeout time.Duration `mapstructure:"transfer_timeout"`
	// BlockSize is the transfer chunk size in bytes
	BlockSize int `mapstructure:"block_size"`
}

// DownloadConfig controls where downloads land
type DownloadConfig struct {
	Dir string `mapstructure:"dir"`
}

// TUIConfig controls the terminal runtime
type TUIConfig struct {
	// KeyTimeoutMs is how long one loop iteration waits for a key
	KeyTimeoutMs int `mapstructure:"key_timeout_ms"`
	// ChatPageSize is how many messages one scroll step moves
	ChatPageSize int `mapstructure:"chat_page_size"`
	// ChatVisible is how many messages the chat view shows at once
	ChatVisible int `mapstructure:"chat_visible"`
	// PreviewCount is how many messages the main menu previews
	PreviewCount int `mapstructure:"preview_count"`
}

// HistoryConfig controls the local transfer history
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// MaxEntries caps the stored transfers; 0 keeps everything
	MaxEntries int `mapstructure:"max_entries"`
}

// LoggingConfig controls the log file
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// File is the log destination; empty means LogPath
	File string `mapstructure:"file"`
}

// ServeConfig controls the built-in server
type ServeConfig struct {
	Listen      string `mapstructure:"listen"`
	UploadDir   string `mapstructure:"upload_dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// PollInterval returns the poll interval as a time.Duration
func (c *PollConfig) PollInterval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// KeyTimeout returns the key wait as a time.Duration
func (c *TUIConfig) KeyTimeout() time.Duration {
	return time.Duration(c.KeyTimeoutMs) * time.Millisecond
}

// MaxUploadBytes returns the upload limit in bytes
func (c *ServeConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// ServerAddress returns the configured address or the default
func (c *Config) ServerAddress() string {
	if c.Server.Address == "" {
		return DefaultServerAddress
	}
	return c.Server.Address
}

// LogFile returns the configured log file or the default location
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	if LogPath != "" {
		return LogPath
	}
	return filepath.Join(Dir(), "lantransfer.log")
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		User: UserConfig{
			Name: "CLI User",
		},
		Poll: PollConfig{
			IntervalMs: 300,
		},
		Client: ClientConfig{
			ControlTimeout:  10 * time.Second,
			TransferTimeout: 5 * time.Minute,
			BlockSize:       64 * 1024,
		},
		Download: DownloadConfig{
			Dir: "downloads",
		},
		TUI: TUIConfig{
			KeyTimeoutMs: 100,
			ChatPageSize: 10,
			ChatVisible:  17,
			PreviewCount: 13,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Listen:      ":5000",
			UploadDir:   "uploads",
			MaxUploadMB: 500,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("server.address", defaults.Server.Address)
	viper.SetDefault("user.name", defaults.User.Name)
	viper.SetDefault("poll.interval_ms", defaults.Poll.IntervalMs)

	viper.SetDefault("client.control_timeout", defaults.Client.ControlTimeout)
	viper.SetDefault("client.transfer_timeout", defaults.Client.TransferTimeout)
	viper.SetDefault("client.block_size", defaults.Client.BlockSize)

	viper.SetDefault("download.dir", defaults.Download.Dir)

	viper.SetDefault("tui.key_timeout_ms", defaults.TUI.KeyTimeoutMs)
	viper.SetDefault("tui.chat_page_size", defaults.TUI.ChatPageSize)
	viper.SetDefault("tui.chat_visible", defaults.TUI.ChatVisible)
	viper.SetDefault("tui.preview_count", defaults.TUI.PreviewCount)

	viper.SetDefault("history.enabled", defaults.History.Enabled)
	viper.SetDefault("history.max_entries", defaults.History.MaxEntries)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("serve.listen", defaults.Serve.Listen)
	viper.SetDefault("serve.upload_dir", defaults.Serve.UploadDir)
	viper.SetDefault("serve.max_upload_mb", defaults.Serve.MaxUploadMB)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Dir returns the path to the user's config directory
func Dir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lantransfer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lantransfer"
	}
	return filepath.Join(home, ".config", "lantransfer")
}

// File returns the path to the config file
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Initialize resolves the global paths and creates the config directory
func Initialize() error {
	ConfigDir = Dir()
	DatabasePath = filepath.Join(ConfigDir, "lantransfer.db")
	LogPath = filepath.Join(ConfigDir, "lantransfer.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}
	return nil
}
