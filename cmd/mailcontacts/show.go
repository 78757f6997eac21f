package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/mailcontacts/internal/app"
	"github.com/nhle/mailcontacts/internal/details"
	"github.com/nhle/mailcontacts/internal/source"
	"github.com/nhle/mailcontacts/internal/source/file"
)

var (
	showUID    uint32
	showFolder string
	showPlain  bool
)

var showCmd = &cobra.Command{
	Use:   "show [file.eml]",
	Short: "Show the participants of a message",
	Long: `Show the date, senders, recipients and folder of a message and mark the
participants that are in the address book.

The message is read from a .eml file, or from the configured IMAP account
with --uid. The interactive view lets you add participants to the address
book, copy their addresses or start a new message to them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, ref, err := messageSource(args)
		if err != nil {
			return err
		}

		book, err := openAddressBook()
		if err != nil {
			return err
		}
		defer book.Close()

		svc := details.NewService(loader, details.NewBuilder(book.repo))
		appearance := details.AppearanceFromConfig(cfg.Display)

		if showPlain {
			d, err := svc.LoadDetails(cmd.Context(), ref)
			if err != nil {
				return err
			}
			printDetails(cmd.OutOrStdout(), d, appearance)
			return nil
		}

		quietLogging()
		m := app.New(app.Options{
			Service:    svc,
			Actions:    details.NewActions(book.store, book.repo, details.SystemClipboard{}),
			Cache:      book.repo,
			Appearance: appearance,
			Ref:        ref,
		})
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	showCmd.Flags().Uint32Var(&showUID, "uid", 0, "Load the message with this UID from the IMAP account.")
	showCmd.Flags().StringVar(&showFolder, "folder", "", "IMAP folder holding --uid. Defaults to imap.mailbox.")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Print the participants instead of opening the interactive view.")
	rootCmd.AddCommand(showCmd)
}

// messageSource picks the loader for a file argument or --uid.
func messageSource(args []string) (source.Loader, source.MessageRef, error) {
	switch {
	case len(args) == 1 && showUID != 0:
		return nil, source.MessageRef{}, errors.New("pass either a file or --uid, not both")
	case len(args) == 1:
		return file.NewLoader(), source.MessageRef{Path: args[0]}, nil
	case showUID != 0:
		client, err := imapClient()
		if err != nil {
			return nil, source.MessageRef{}, err
		}
		return client, source.MessageRef{Folder: showFolder, UID: showUID}, nil
	default:
		return nil, source.MessageRef{}, errors.New("a message file or --uid is required")
	}
}

// printDetails writes the sheet as plain text, one row per line.
func printDetails(w io.Writer, d *details.MessageDetails, appearance details.Appearance) {
	if d.Subject != "" {
		fmt.Fprintf(w, "Subject: %s\n", d.Subject)
	}

	for _, it := range details.Items(d, time.Local) {
		switch it.Kind {
		case details.ItemDate:
			fmt.Fprintln(w, it.Text)
		case details.ItemSectionHeader:
			if it.Extra != "" {
				fmt.Fprintf(w, "\n%s (%s)\n", it.Text, it.Extra)
			} else {
				fmt.Fprintf(w, "\n%s\n", it.Text)
			}
		case details.ItemParticipant:
			fmt.Fprintf(w, "  %s\n", participantLine(*it.Participant, appearance))
		case details.ItemDivider:
			fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 40))
		case details.ItemFolder:
			fmt.Fprintf(w, "\nFolder: %s\n", it.Text)
		}
	}
}

func participantLine(p details.Participant, appearance details.Appearance) string {
	line := string(p.EmailAddress)
	if p.DisplayName != "" {
		line = fmt.Sprintf("%s <%s>", p.DisplayName, p.EmailAddress)
	}
	switch {
	case p.IsInContacts:
		line += "  [" + p.ContactLookupURI + "]"
	case appearance.ShowAddToContacts(p):
		line += "  [not in contacts]"
	}
	return line
}
