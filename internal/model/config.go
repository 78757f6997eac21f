package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g.
// MAILCONTACTS_IMAP_HOST.
const envPrefix = "MAILCONTACTS"

// AddressBookConfig holds settings for the local contact store.
type AddressBookConfig struct {
	// Path is the SQLite database file backing the address book.
	Path string `mapstructure:"path" yaml:"path"`

	// Permission records whether the user allowed reading the address
	// book. It is checked on every lookup, never cached.
	Permission bool `mapstructure:"permission" yaml:"permission"`
}

// IMAPConfig holds the IMAP account used to load messages and harvest
// participant addresses.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`

	// HarvestDays limits harvesting to messages received in the last N days.
	HarvestDays int `mapstructure:"harvest_days" yaml:"harvest_days"`

	// HarvestLimit caps the number of envelopes fetched per harvest run.
	HarvestLimit int `mapstructure:"harvest_limit" yaml:"harvest_limit"`
}

// Configured reports whether enough settings are present to connect.
func (c IMAPConfig) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// ShowContactPicture renders an initials badge next to participants.
	ShowContactPicture bool `mapstructure:"show_contact_picture" yaml:"show_contact_picture"`

	// AlwaysHideAddToContacts hides the add-to-contacts affordance even
	// for participants that are not in the address book.
	AlwaysHideAddToContacts bool `mapstructure:"always_hide_add_to_contacts" yaml:"always_hide_add_to_contacts"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	AddressBook AddressBookConfig `mapstructure:"address_book" yaml:"address_book"`
	IMAP        IMAPConfig        `mapstructure:"imap" yaml:"imap"`
	Display     DisplayConfig     `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns ~/.config/mailcontacts, falling back to the working
// directory when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailcontacts")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailcontacts/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAddressBookPath returns ~/.config/mailcontacts/contacts.db.
func DefaultAddressBookPath() string {
	return filepath.Join(ConfigDir(), "contacts.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		AddressBook: AddressBookConfig{
			Path:       DefaultAddressBookPath(),
			Permission: true,
		},
		IMAP: IMAPConfig{
			Port:         "993",
			TLS:          true,
			Mailbox:      "INBOX",
			HarvestDays:  7,
			HarvestLimit: 200,
		},
		Display: DisplayConfig{
			Theme:              "default",
			ShowContactPicture: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("address_book.path", d.AddressBook.Path)
	v.SetDefault("address_book.permission", d.AddressBook.Permission)
	v.SetDefault("imap.port", d.IMAP.Port)
	v.SetDefault("imap.tls", d.IMAP.TLS)
	v.SetDefault("imap.mailbox", d.IMAP.Mailbox)
	v.SetDefault("imap.harvest_days", d.IMAP.HarvestDays)
	v.SetDefault("imap.harvest_limit", d.IMAP.HarvestLimit)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.show_contact_picture", d.Display.ShowContactPicture)
	v.SetDefault("display.always_hide_add_to_contacts", d.Display.AlwaysHideAddToContacts)
	// Bind the remaining keys so AutomaticEnv can override them.
	v.SetDefault("imap.host", "")
	v.SetDefault("imap.username", "")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) are
// returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.AddressBook.Path = expandHome(cfg.AddressBook.Path)
	if cfg.IMAP.Mailbox == "" {
		cfg.IMAP.Mailbox = "INBOX"
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("address_book", cfg.AddressBook)
	v.Set("imap", cfg.IMAP)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
