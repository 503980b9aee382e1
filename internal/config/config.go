package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAutoSave is the auto-save interval used when none is configured
const DefaultAutoSave = 5 * time.Minute

// Settings keys, as "section.key" of the INI file
const (
	KeyStoreFile = "state.file"
	KeyAutoSave  = "state.auto_save"
	KeyLogFile   = "state.log_file"
	KeyTheme     = "ui.theme"
)

// Config holds the user settings
type Config struct {
	StoreFile string        // path of the active store, empty if none chosen yet
	AutoSave  time.Duration // interval between auto-saves
	LogFile   string        // optional log destination
	Theme     string

	path string
	file *viper.Viper // only what the settings file holds, without env or defaults
}

// DefaultConfigPath returns the settings file location
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "stint", "stint.ini"), nil
}

// LoadEnv reads a .env file into the environment if one exists
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// Load reads the settings file at path. A missing file yields defaults.
// STINT_STATE_FILE, STINT_STATE_AUTO_SAVE, STINT_STATE_LOG_FILE and
// STINT_UI_THEME override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("stint")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyStoreFile, "")
	v.SetDefault(KeyAutoSave, DefaultAutoSave.Milliseconds())
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTheme, "")

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	file := viper.New()
	if err := readFile(file, path); err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreFile: v.GetString(KeyStoreFile),
		LogFile:   v.GetString(KeyLogFile),
		Theme:     v.GetString(KeyTheme),
		path:      path,
		file:      file,
	}

	ms := v.GetInt64(KeyAutoSave)
	if ms <= 0 {
		ms = DefaultAutoSave.Milliseconds()
	}
	cfg.AutoSave = time.Duration(ms) * time.Millisecond

	return cfg, nil
}

// readFile loads the INI file at path into v. A missing file is not an error.
func readFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Path returns the settings file location
func (c *Config) Path() string {
	return c.path
}

// SetStoreFile records the active store and writes the settings file
func (c *Config) SetStoreFile(path string) error {
	c.StoreFile = path
	return c.persist(KeyStoreFile, path)
}

// SetTheme records the chosen theme and writes the settings file
func (c *Config) SetTheme(name string) error {
	c.Theme = name
	return c.persist(KeyTheme, name)
}

// persist writes one key to the settings file. Values that only come from
// flags or the environment are left out of it.
func (c *Config) persist(key string, value interface{}) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	c.file.Set(key, value)
	if err := c.file.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
