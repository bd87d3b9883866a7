package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "todo.log"
	DefaultListTitle      = "Tasks"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "TODO_CONFIG"
	appDirName    = "todo"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Select    string `toml:"select"`
	Actions   string `toml:"actions"`
	Toggle    string `toml:"toggle"`
	Edit      string `toml:"edit"`
	Delete    string `toml:"delete"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	NextField string `toml:"next_field"`
	PrevField string `toml:"prev_field"`
}

type Config struct {
	DBPath        string `toml:"db_path"`
	LogPath       string `toml:"log_path"`
	LogLevel      string `toml:"log_level"`
	DefaultList   string `toml:"default_list"`
	ConfirmDelete bool   `toml:"confirm_delete"`
	Watch         bool   `toml:"watch"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath returns $TODO_CONFIG when set, otherwise config.toml inside
// the user config directory. It falls back to the working directory when no
// config directory is available.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults first when the
// file does not exist yet. Relative db/log paths are resolved against the
// directory holding the config file.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		return cfg.resolvePaths(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg.resolvePaths(path), nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// Default returns the configuration written on first launch.
func Default() Config {
	return Config{
		DBPath:        DefaultDBName,
		LogPath:       DefaultLogName,
		LogLevel:      "info",
		DefaultList:   DefaultListTitle,
		ConfirmDelete: false,
		Watch:         true,
		Keys:          defaultKeymap(),
	}
}

func defaultKeymap() Keymap {
	return Keymap{
		Quit:      "q",
		Add:       "a",
		Up:        "k",
		Down:      "j",
		Select:    "enter",
		Actions:   "s",
		Toggle:    " ",
		Edit:      "e",
		Delete:    "d",
		Confirm:   "enter",
		Cancel:    "esc",
		NextField: "tab",
		PrevField: "shift+tab",
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.DefaultList) == "" {
		c.DefaultList = def.DefaultList
	}

	k, dk := &c.Keys, def.Keys
	for _, pair := range []struct {
		v   *string
		def string
	}{
		{&k.Quit, dk.Quit},
		{&k.Add, dk.Add},
		{&k.Up, dk.Up},
		{&k.Down, dk.Down},
		{&k.Select, dk.Select},
		{&k.Actions, dk.Actions},
		{&k.Toggle, dk.Toggle},
		{&k.Edit, dk.Edit},
		{&k.Delete, dk.Delete},
		{&k.Confirm, dk.Confirm},
		{&k.Cancel, dk.Cancel},
		{&k.NextField, dk.NextField},
		{&k.PrevField, dk.PrevField},
	} {
		if *pair.v == "" {
			*pair.v = pair.def
		}
	}
}

func (c Config) resolvePaths(configPath string) Config {
	base := filepath.Dir(configPath)
	c.DBPath = resolve(base, c.DBPath)
	c.LogPath = resolve(base, c.LogPath)
	return c
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(base, p)
}
