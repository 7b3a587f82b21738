package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultListFileName   = "list.json"
	appDirName            = "cesta"
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Collapse     string `toml:"collapse"`
	Expand       string `toml:"expand"`
	Toggle       string `toml:"toggle"`
	AddChild     string `toml:"add_child"`
	AddHeading   string `toml:"add_heading"`
	AddLink      string `toml:"add_link"`
	Rename       string `toml:"rename"`
	Delete       string `toml:"delete"`
	QuantityUp   string `toml:"quantity_up"`
	QuantityDown string `toml:"quantity_down"`
	Grab         string `toml:"grab"`
	DropRoot     string `toml:"drop_root"`
	Open         string `toml:"open"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
}

type Config struct {
	ListPath string `toml:"list_path"`
	Keys     Keymap `toml:"keys"`
}

// ResolveConfigPath places the config in the per-user config directory,
// falling back to the working directory when none is available.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing one with defaults first
// when it does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(path)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ListPath == "" {
		cfg.ListPath = defaultListPath(path)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultListPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), DefaultListFileName)
}

func defaultConfig(configPath string) Config {
	return Config{
		ListPath: defaultListPath(configPath),
		Keys: Keymap{
			Quit:         "q",
			Up:           "k",
			Down:         "j",
			Collapse:     "h",
			Expand:       "l",
			Toggle:       " ",
			AddChild:     "a",
			AddHeading:   "A",
			AddLink:      "u",
			Rename:       "r",
			Delete:       "d",
			QuantityUp:   "+",
			QuantityDown: "-",
			Grab:         "g",
			DropRoot:     "R",
			Open:         "o",
			Confirm:      "enter",
			Cancel:       "esc",
		},
	}
}
