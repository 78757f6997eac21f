package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/mailcontacts/internal/credential"
	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/source/email"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mailcontacts configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write the config file and store the IMAP password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fb := bindingsFromConfig(cfg)
		if err := configForm(fb).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		next := fb.apply(*cfg)
		if fb.password != "" {
			if err := credential.Set(credential.IMAPKey(next.IMAP.Username), fb.password); err != nil {
				return fmt.Errorf("saving IMAP password: %w", err)
			}
		}
		if err := model.SaveConfig(cfgPath, &next); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgPath)

		if !next.IMAP.Configured() || fb.password == "" {
			return nil
		}
		return testConnection(cmd, next.IMAP, fb.password)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config:                       %s\n", cfgPath)
		fmt.Fprintf(out, "address_book.path:            %s\n", cfg.AddressBook.Path)
		fmt.Fprintf(out, "address_book.permission:      %t\n", cfg.AddressBook.Permission)
		fmt.Fprintf(out, "imap.host:                    %s\n", cfg.IMAP.Host)
		fmt.Fprintf(out, "imap.port:                    %s\n", cfg.IMAP.Port)
		fmt.Fprintf(out, "imap.username:                %s\n", cfg.IMAP.Username)
		fmt.Fprintf(out, "imap.tls:                     %t\n", cfg.IMAP.TLS)
		fmt.Fprintf(out, "imap.mailbox:                 %s\n", cfg.IMAP.Mailbox)
		fmt.Fprintf(out, "display.show_contact_picture: %t\n", cfg.Display.ShowContactPicture)
		fmt.Fprintf(out, "display.always_hide_add_to_contacts: %t\n", cfg.Display.AlwaysHideAddToContacts)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// formBindings holds the values edited by the config form.
type formBindings struct {
	addressBookPath string
	permission      bool
	host            string
	port            string
	username        string
	password        string
	tls             bool
	mailbox         string
	showPicture     bool
	hideAdd         bool
}

func bindingsFromConfig(c *model.AppConfig) *formBindings {
	return &formBindings{
		addressBookPath: c.AddressBook.Path,
		permission:      c.AddressBook.Permission,
		host:            c.IMAP.Host,
		port:            c.IMAP.Port,
		username:        c.IMAP.Username,
		tls:             c.IMAP.TLS,
		mailbox:         c.IMAP.Mailbox,
		showPicture:     c.Display.ShowContactPicture,
		hideAdd:         c.Display.AlwaysHideAddToContacts,
	}
}

// apply returns c updated with the form values.
func (fb *formBindings) apply(c model.AppConfig) model.AppConfig {
	c.AddressBook.Path = strings.TrimSpace(fb.addressBookPath)
	c.AddressBook.Permission = fb.permission
	c.IMAP.Host = strings.TrimSpace(fb.host)
	c.IMAP.Port = strings.TrimSpace(fb.port)
	c.IMAP.Username = strings.TrimSpace(fb.username)
	c.IMAP.TLS = fb.tls
	c.IMAP.Mailbox = strings.TrimSpace(fb.mailbox)
	c.Display.ShowContactPicture = fb.showPicture
	c.Display.AlwaysHideAddToContacts = fb.hideAdd
	return c
}

func configForm(fb *formBindings) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Address book").
				Description("SQLite file holding your contacts").
				Value(&fb.addressBookPath).
				Validate(validateRequired("Address book")),
			huh.NewConfirm().
				Title("Allow reading contacts").
				Description("Participants are only matched against the address book when allowed").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.permission),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Description("Leave empty to only read .eml files").
				Placeholder("imap.example.com").
				Value(&fb.host),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&fb.port).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&fb.username),
			huh.NewInput().
				Title("Password").
				Description("Stored in the system keyring. Leave empty to keep the current one").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.tls),
			huh.NewInput().
				Title("Mailbox").
				Placeholder("INBOX").
				Value(&fb.mailbox),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show initials badges").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.showPicture),
			huh.NewConfirm().
				Title("Always hide add to contacts").
				Affirmative("Yes").
				Negative("No").
				Value(&fb.hideAdd),
		),
	)
}

// testConnection logs in once so a wrong password is reported right away.
func testConnection(cmd *cobra.Command, c model.IMAPConfig, password string) error {
	client := email.NewIMAPClient(c.Host, c.Port, c.Username, password, c.TLS, c.Mailbox)

	var connErr error
	err := spinner.New().
		Title("Testing connection to " + c.Host + "...").
		Action(func() {
			conn, err := client.Connect(cmd.Context())
			if err != nil {
				connErr = err
				return
			}
			_ = conn.Logout().Wait()
		}).
		Run()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if connErr != nil {
		log.Warn().Err(connErr).Str("host", c.Host).Msg("IMAP connection test failed")
		fmt.Fprintf(out, "Connection failed: %v\n", connErr)
		return nil
	}
	fmt.Fprintln(out, "Connection successful")
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

// validatePort accepts an empty value, which keeps the default.
func validatePort(s string) error {
	s = strings.TrimSpace(s)
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
