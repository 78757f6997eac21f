package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcontacts/internal/mail"
)

var addCmd = &cobra.Command{
	Use:   "add <address> [name]",
	Short: "Add an address to the address book",
	Long: `Add an address to the address book. The address may carry a display name
("Alice <alice@example.com>"); a name given as further arguments wins.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := mail.ParseAddress(args[0])
		if err != nil {
			return err
		}
		name := parsed.Name
		if len(args) > 1 {
			name = strings.Join(args[1:], " ")
		}

		book, err := openAddressBook()
		if err != nil {
			return err
		}
		defer book.Close()

		c, err := book.store.AddContact(cmd.Context(), name, []mail.EmailAddress{mail.FromAddress(parsed)})
		if err != nil {
			return err
		}
		book.repo.ClearCache()

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s <%s> as %s\n", c.DisplayName, c.EmailAddresses[0], c.LookupURI())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
