package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Review        ReviewConfig        `toml:"review"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	ProjectDir   string `toml:"project_dir"`
	BaseBranch   string `toml:"base_branch"`
	DatabasePath string `toml:"database_path"`
	LockPath     string `toml:"lock_path"`
	LogPath      string `toml:"log_path"`
}

// ReviewConfig holds review loop settings
type ReviewConfig struct {
	MaxIterations  int      `toml:"max_iterations"`
	AutoMerge      bool     `toml:"auto_merge"`
	ImproveTimeout duration `toml:"improve_timeout"`
	ReviewTimeout  duration `toml:"review_timeout"`
	FixTimeout     duration `toml:"fix_timeout"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	TelegramBotToken string `toml:"telegram_bot_token"`
	TelegramChatID   string `toml:"telegram_chat_id"`
	SlackWebhook     string `toml:"slack_webhook"`
	Desktop          bool   `toml:"desktop"`
}

// duration is a time.Duration that unmarshals from TOML strings like "30m".
type duration time.Duration

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			ProjectDir:   "",
			BaseBranch:   "main",
			DatabasePath: filepath.Join(home, ".auto-reviewer", "history.db"),
		},
		Review: ReviewConfig{
			MaxIterations:  3,
			AutoMerge:      false,
			ImproveTimeout: duration(60 * time.Minute),
			ReviewTimeout:  duration(10 * time.Minute),
			FixTimeout:     duration(20 * time.Minute),
		},
		Notifications: NotificationsConfig{
			Desktop: false,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults.
// Telegram credentials fall back to the TG_BOT_TOKEN and TG_CHAT_ID
// environment variables when unset.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.General.ProjectDir = ExpandPath(cfg.General.ProjectDir)
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.General.LockPath = ExpandPath(cfg.General.LockPath)
	cfg.General.LogPath = ExpandPath(cfg.General.LogPath)

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Notifications.TelegramBotToken == "" {
		c.Notifications.TelegramBotToken = os.Getenv("TG_BOT_TOKEN")
	}
	if c.Notifications.TelegramChatID == "" {
		c.Notifications.TelegramChatID = os.Getenv("TG_CHAT_ID")
	}
}

// LockFile returns the scheduler lock path, defaulting to a dotfile in
// the project directory.
func (c *Config) LockFile() string {
	if c.General.LockPath != "" {
		return c.General.LockPath
	}
	return filepath.Join(c.General.ProjectDir, ".auto_review.lock")
}

// LogFile returns the run log path, defaulting to auto_review.log in the
// project directory.
func (c *Config) LogFile() string {
	if c.General.LogPath != "" {
		return c.General.LogPath
	}
	return filepath.Join(c.General.ProjectDir, "auto_review.log")
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "auto-reviewer", "config.toml")
}
