// Package harvest adds the participants of recent mail to the address book.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/mailcontacts/internal/contact"
	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/permission"
	"github.com/nhle/mailcontacts/internal/source"
	"github.com/nhle/mailcontacts/internal/store"
)

// ErrNoPermission is returned when the address book may not be read.
var ErrNoPermission = permission.ErrDenied

// ContactAdder persists new contacts.
type ContactAdder interface {
	AddContact(ctx context.Context, name string, addresses []mail.EmailAddress) (*model.Contact, error)
}

// Repository is the part of the contact repository the harvester needs.
type Repository interface {
	contact.Repository
	contact.CachingRepository
}

// Result summarizes a harvest run.
type Result struct {
	Envelopes int
	Addresses int
	Added     []model.Contact
}

// Harvester collects participant addresses from recent envelopes.
type Harvester struct {
	fetcher source.EnvelopeFetcher
	repo    Repository
	book    ContactAdder
	exclude map[mail.EmailAddress]bool
}

// New creates a Harvester. Addresses in exclude (typically the account's
// own address) are never added.
func New(
	fetcher source.EnvelopeFetcher,
	repo Repository,
	book ContactAdder,
	exclude ...mail.EmailAddress,
) *Harvester {
	ex := make(map[mail.EmailAddress]bool, len(exclude))
	for _, a := range exclude {
		ex[a] = true
	}
	return &Harvester{fetcher: fetcher, repo: repo, book: book, exclude: ex}
}

// Run fetches envelopes received since the given time and adds every
// participant without a contact. The repository cache is cleared when
// anything was added, including when the run stops early on an error, so
// earlier negative lookups are not served stale.
func (h *Harvester) Run(ctx context.Context, since time.Time, limit int) (*Result, error) {
	if !h.repo.HasContactPermission() {
		return nil, ErrNoPermission
	}

	envelopes, err := h.fetcher.FetchEnvelopes(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching envelopes: %w", err)
	}

	res := &Result{Envelopes: len(envelopes)}
	seen := make(map[mail.EmailAddress]bool)
	defer func() {
		if len(res.Added) > 0 {
			h.repo.ClearCache()
		}
	}()

	for _, env := range envelopes {
		for _, a := range env.Participants() {
			addr := mail.FromAddress(a)
			if addr.IsZero() || h.exclude[addr] || seen[addr] {
				continue
			}
			seen[addr] = true
			res.Addresses++

			known, err := h.repo.HasContactFor(ctx, addr)
			if err != nil {
				return res, err
			}
			if known {
				continue
			}

			c, err := h.book.AddContact(ctx, a.Name, []mail.EmailAddress{addr})
			if errors.Is(err, store.ErrDuplicateAddress) {
				continue
			}
			if err != nil {
				return res, fmt.Errorf("adding contact for %s: %w", addr, err)
			}
			res.Added = append(res.Added, *c)
			log.Info().Str("address", addr.String()).Str("name", c.DisplayName).Msg("harvested contact")
		}
	}

	return res, nil
}
