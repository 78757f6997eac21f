package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcontacts/internal/mail"
)

var lookupAny bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <address>...",
	Short: "Look up the contact owning each address",
	Long: `Look up the contact owning each address. With --any only report whether
at least one of the addresses belongs to a contact; the lookup stops at the
first match.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := mail.ParseEmailAddresses(args)
		if err != nil {
			return err
		}

		book, err := openAddressBook()
		if err != nil {
			return err
		}
		defer book.Close()

		if err := book.requirePermission(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		if lookupAny {
			found, err := book.repo.HasAnyContactFor(ctx, addrs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, found)
			return nil
		}

		for _, a := range addrs {
			c, err := book.repo.GetContactFor(ctx, a)
			if err != nil {
				return err
			}
			if c == nil {
				fmt.Fprintf(out, "%-32s  -\n", a)
				continue
			}
			fmt.Fprintf(out, "%-32s  %s (%s)\n", a, c.DisplayName, c.LookupURI())
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupAny, "any", false, "Only print whether any address has a contact.")
	rootCmd.AddCommand(lookupCmd)
}
