package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/mailcontacts/internal/contact"
	"github.com/nhle/mailcontacts/internal/credential"
	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/permission"
	"github.com/nhle/mailcontacts/internal/source/email"
	"github.com/nhle/mailcontacts/internal/store"
)

var (
	cfgPath string
	verbose bool
	logFile string

	cfg *model.AppConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mailcontacts",
	Short: "Show who a message involves and which of them are in your contacts",
	Long: `mailcontacts resolves the senders and recipients of a message against a
local address book.

The address book is a SQLite file (address_book.path in the config). Lookups
are cached for the lifetime of the process and the cache is dropped whenever
the address book changes. Messages are read either from .eml files or from
the configured IMAP account.

Configuration is read from ~/.config/mailcontacts/config.yaml and can be
overridden with MAILCONTACTS_* environment variables, e.g.
MAILCONTACTS_IMAP_HOST. The IMAP password lives in the system keyring or in
MAILCONTACTS_IMAP_PASSWORD.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd.ErrOrStderr()); err != nil {
			return err
		}

		c, err := model.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		cfg = c
		log.Debug().Str("config", cfgPath).Str("address_book", cfg.AddressBook.Path).Msg("loaded config")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgPath, "config", model.DefaultConfigPath(), "Path to the config file.")
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Log debug output.")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr. The interactive view only logs when this is set.")
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// execute runs the root command and closes the log file whether or not
// the command failed.
func execute(ctx context.Context) error {
	defer closeLogging()
	return rootCmd.ExecuteContext(ctx)
}

// addressBook bundles the store with the caching repository in front of it.
type addressBook struct {
	store      *store.SQLiteStore
	repo       *contact.CachingContactRepository
	permission *permission.FileResolver
}

// openAddressBook opens the configured address book. The caller must
// Close it.
func openAddressBook() (*addressBook, error) {
	path := cfg.AddressBook.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating address book directory: %w", err)
		}
	}

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening address book %s: %w", path, err)
	}

	resolver := permission.NewFileResolver(path, cfg.AddressBook.Permission)
	return &addressBook{
		store:      s,
		repo:       contact.NewCachingContactRepository(nil, s, resolver),
		permission: resolver,
	}, nil
}

// requirePermission fails when the address book may not be read.
func (b *addressBook) requirePermission() error {
	if !b.repo.HasContactPermission() {
		return fmt.Errorf("%w: set address_book.permission in %s", permission.ErrDenied, cfgPath)
	}
	return nil
}

func (b *addressBook) Close() error {
	return b.store.Close()
}

// imapClient builds a client for the configured account.
func imapClient() (*email.IMAPClient, error) {
	if !cfg.IMAP.Configured() {
		return nil, errors.New("IMAP is not configured, run `mailcontacts config init`")
	}

	password, err := credential.IMAPPassword(cfg.IMAP.Username)
	if err != nil {
		return nil, fmt.Errorf("reading IMAP password: %w", err)
	}

	return email.NewIMAPClient(
		cfg.IMAP.Host,
		cfg.IMAP.Port,
		cfg.IMAP.Username,
		password,
		cfg.IMAP.TLS,
		cfg.IMAP.Mailbox,
	), nil
}
