package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy search the address book by name or address",
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := openAddressBook()
		if err != nil {
			return err
		}
		defer book.Close()

		if err := book.requirePermission(); err != nil {
			return err
		}

		contacts, err := book.store.SearchContacts(cmd.Context(), strings.Join(args, " "), searchLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(contacts) == 0 {
			fmt.Fprintln(out, "No matching contacts")
			return nil
		}
		for _, c := range contacts {
			addrs := make([]string, len(c.EmailAddresses))
			for i, a := range c.EmailAddresses {
				addrs[i] = string(a)
			}
			fmt.Fprintf(out, "%-24s  %s\n", c.DisplayName, strings.Join(addrs, ", "))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum number of contacts to print.")
	rootCmd.AddCommand(searchCmd)
}
