package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything iqama reads from config.toml and the environment.
type Config struct {
	DataDir string
	LogFile string
	Remote  Remote
	Sync    Sync
	Storage Storage
	Serve   Serve
}

// Remote locates the shared record. Sync is disabled when URL or APIKey is
// blank.
type Remote struct {
	URL      string
	APIKey   string
	Table    string
	RecordID string
}

// Enabled reports whether remote sync is configured.
func (r Remote) Enabled() bool {
	return r.URL != "" && r.APIKey != ""
}

// Sync tunes the push coordinator.
type Sync struct {
	Debounce   time.Duration
	RetryEvery time.Duration
}

// Storage toggles the local tiers.
type Storage struct {
	Local      bool
	Cookie     bool
	Structured bool
}

// Serve configures the bundled remote store.
type Serve struct {
	Addr          string
	APIKey        string
	RedisAddr     string
	RedisPassword string
}

const (
	defaultConfigPath = "~/.config/iqama/config.toml"
	defaultDataDir    = "~/.local/share/iqama"
	defaultLogName    = "iqama.log"
	defaultTable      = "prayer_times"
	defaultRecordID   = "masjid-prayer-times"
	defaultDebounce   = 400 * time.Millisecond
	defaultRetryEvery = 5 * time.Second
	defaultServeAddr  = ":8787"
)

// Environment variables that override file values.
const (
	EnvRemoteURL   = "IQAMA_REMOTE_URL"
	EnvRemoteKey   = "IQAMA_REMOTE_KEY"
	EnvRemoteTable = "IQAMA_REMOTE_TABLE"
	EnvRecordID    = "IQAMA_RECORD_ID"
	EnvDataDir     = "IQAMA_DATA_DIR"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// LoadEnvFile loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

type rawConfig struct {
	DataDir string `toml:"data_dir"`
	LogFile string `toml:"log_file"`
	Remote  struct {
		URL      string `toml:"url"`
		APIKey   string `toml:"api_key"`
		Table    string `toml:"table"`
		RecordID string `toml:"record_id"`
	} `toml:"remote"`
	Sync struct {
		DebounceMS   int `toml:"debounce_ms"`
		RetrySeconds int `toml:"retry_seconds"`
	} `toml:"sync"`
	Storage struct {
		Local      *bool `toml:"local"`
		Cookie     *bool `toml:"cookie"`
		Structured *bool `toml:"structured"`
	} `toml:"storage"`
	Serve struct {
		Addr          string `toml:"addr"`
		APIKey        string `toml:"api_key"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
	} `toml:"serve"`
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	applyEnv(&raw)
	return build(raw), nil
}

func applyEnv(raw *rawConfig) {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	override(&raw.Remote.URL, EnvRemoteURL)
	override(&raw.Remote.APIKey, EnvRemoteKey)
	override(&raw.Remote.Table, EnvRemoteTable)
	override(&raw.Remote.RecordID, EnvRecordID)
	override(&raw.DataDir, EnvDataDir)
}

func build(raw rawConfig) Config {
	cfg := Config{
		DataDir: mustExpand(orDefault(raw.DataDir, defaultDataDir)),
		Remote: Remote{
			URL:      strings.TrimSpace(raw.Remote.URL),
			APIKey:   strings.TrimSpace(raw.Remote.APIKey),
			Table:    orDefault(raw.Remote.Table, defaultTable),
			RecordID: orDefault(raw.Remote.RecordID, defaultRecordID),
		},
		Sync: Sync{
			Debounce:   defaultDebounce,
			RetryEvery: defaultRetryEvery,
		},
		Storage: Storage{
			Local:      boolOr(raw.Storage.Local, true),
			Cookie:     boolOr(raw.Storage.Cookie, true),
			Structured: boolOr(raw.Storage.Structured, true),
		},
		Serve: Serve{
			Addr:          orDefault(raw.Serve.Addr, defaultServeAddr),
			APIKey:        strings.TrimSpace(raw.Serve.APIKey),
			RedisAddr:     strings.TrimSpace(raw.Serve.RedisAddr),
			RedisPassword: raw.Serve.RedisPassword,
		},
	}

	if raw.Sync.DebounceMS > 0 {
		cfg.Sync.Debounce = time.Duration(raw.Sync.DebounceMS) * time.Millisecond
	}
	if raw.Sync.RetrySeconds > 0 {
		cfg.Sync.RetryEvery = time.Duration(raw.Sync.RetrySeconds) * time.Second
	}

	if strings.TrimSpace(raw.LogFile) == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, defaultLogName)
	} else {
		cfg.LogFile = mustExpand(raw.LogFile)
	}
	return cfg
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
