package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcontacts/internal/harvest"
	"github.com/nhle/mailcontacts/internal/mail"
)

var (
	harvestDays  int
	harvestLimit int
	harvestWatch time.Duration
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Add the participants of recent mail to the address book",
	Long: `Fetch the envelopes of recent messages in the configured IMAP mailbox and
add every sender and recipient that is not in the address book yet. Your own
address is skipped.

With --watch the harvest repeats on the given interval until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := cfg.IMAP.HarvestDays
		if cmd.Flags().Changed("days") {
			days = harvestDays
		}
		limit := cfg.IMAP.HarvestLimit
		if cmd.Flags().Changed("limit") {
			limit = harvestLimit
		}

		client, err := imapClient()
		if err != nil {
			return err
		}

		book, err := openAddressBook()
		if err != nil {
			return err
		}
		defer book.Close()

		h := harvest.New(client, book.repo, book.store, mail.NewEmailAddress(cfg.IMAP.Username))
		out := cmd.OutOrStdout()

		if harvestWatch > 0 {
			window := time.Duration(days) * 24 * time.Hour
			p := harvest.NewPoller(h, harvestWatch, window, limit)
			go p.Run(cmd.Context())
			for r := range p.Results() {
				if r.Err != nil {
					fmt.Fprintf(out, "%s  harvest failed: %v\n", time.Now().Format(time.Kitchen), r.Err)
					continue
				}
				printHarvest(out, r.Result)
			}
			return nil
		}

		res, err := h.Run(cmd.Context(), time.Now().AddDate(0, 0, -days), limit)
		if err != nil {
			return err
		}
		printHarvest(out, res)
		return nil
	},
}

func printHarvest(out io.Writer, res *harvest.Result) {
	fmt.Fprintf(out, "Scanned %d messages, %d addresses, added %d contacts\n",
		res.Envelopes, res.Addresses, len(res.Added))
	for _, c := range res.Added {
		fmt.Fprintf(out, "  + %s <%s>\n", c.DisplayName, c.EmailAddresses[0])
	}
}

func init() {
	harvestCmd.Flags().IntVar(&harvestDays, "days", 7, "Only consider messages from the last N days. Defaults to imap.harvest_days.")
	harvestCmd.Flags().DurationVar(&harvestWatch, "watch", 0, "Keep harvesting on this interval, e.g. 15m.")
	harvestCmd.Flags().IntVar(&harvestLimit, "limit", 200, "Fetch at most N envelopes. Defaults to imap.harvest_limit.")
	rootCmd.AddCommand(harvestCmd)
}
