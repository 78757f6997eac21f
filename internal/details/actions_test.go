package details_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/mailcontacts/internal/details"
	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/store"
	"github.com/nhle/mailcontacts/tests/testutil"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type countingCache struct{ clears int }

func (c *countingCache) ClearCache() { c.clears++ }

func participant(name, addr string) details.Participant {
	return details.Participant{
		Address:      mail.Address{Name: name, Address: addr},
		DisplayName:  name,
		EmailAddress: mail.NewEmailAddress(addr),
	}
}

func TestOverflowMenu(t *testing.T) {
	named := details.OverflowMenu(participant("Alice", "alice@example.com"))
	if len(named) != 3 || named[2] != details.ActionCopyNameAndEmailAddress {
		t.Errorf("expected copy-name entry for named participant, got %v", named)
	}

	bare := details.OverflowMenu(participant("", "alice@example.com"))
	if len(bare) != 2 {
		t.Errorf("expected two entries for bare address, got %v", bare)
	}
	for _, a := range bare {
		if a.Label() == "" {
			t.Errorf("expected label for action %d", a)
		}
	}
}

func TestComposeURI(t *testing.T) {
	got := details.ComposeURI(participant("Alice", "alice@example.com"))
	if got != "mailto:alice@example.com" {
		t.Errorf("expected mailto URI, got %q", got)
	}
}

func TestComposeURIEscapesReservedCharacters(t *testing.T) {
	got := details.ComposeURI(participant("", "a?b#c@example.com"))
	if got != "mailto:a%3Fb%23c@example.com" {
		t.Errorf("expected reserved characters escaped, got %q", got)
	}
}

func TestCopyActions(t *testing.T) {
	cb := &fakeClipboard{}
	a := details.NewActions(nil, &countingCache{}, cb)

	text, err := a.CopyEmailAddress(participant("Alice", "alice@example.com"))
	if err != nil || text != "alice@example.com" || cb.text != text {
		t.Errorf("CopyEmailAddress: got %q (clipboard %q, err %v)", text, cb.text, err)
	}

	text, err = a.CopyNameAndEmailAddress(participant("Alice", "alice@example.com"))
	if err != nil || text != `"Alice" <alice@example.com>` {
		t.Errorf("CopyNameAndEmailAddress: got %q (err %v)", text, err)
	}

	if _, err := a.CopyNameAndEmailAddress(participant("", "bob@example.com")); !errors.Is(err, details.ErrNoParticipantName) {
		t.Errorf("expected ErrNoParticipantName, got %v", err)
	}

	cb.err = errors.New("no clipboard")
	if _, err := a.CopyEmailAddress(participant("Alice", "alice@example.com")); err == nil {
		t.Error("expected clipboard error, got nil")
	}
}

func TestAddToContactsClearsCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	cache := &countingCache{}
	a := details.NewActions(s, cache, &fakeClipboard{})
	ctx := context.Background()

	c, err := a.AddToContacts(ctx, participant("Alice", "Alice@Example.com"), "")
	if err != nil {
		t.Fatalf("AddToContacts: %v", err)
	}
	if c.DisplayName != "Alice" {
		t.Errorf("expected header name, got %q", c.DisplayName)
	}
	if cache.clears != 1 {
		t.Errorf("expected cache cleared once, got %d", cache.clears)
	}

	got, err := s.GetContactFor(ctx, mail.NewEmailAddress("alice@example.com"))
	if err != nil || got == nil || got.ID != c.ID {
		t.Fatalf("expected stored contact, got %+v (err %v)", got, err)
	}

	_, err = a.AddToContacts(ctx, participant("Other", "alice@example.com"), "Other")
	if !errors.Is(err, store.ErrDuplicateAddress) {
		t.Errorf("expected ErrDuplicateAddress, got %v", err)
	}
	if cache.clears != 1 {
		t.Errorf("expected no clear on failure, got %d", cache.clears)
	}
}

func TestShowContact(t *testing.T) {
	s := testutil.NewTestStore(t)
	seeded := testutil.SeedContact(t, s, "Carol", "carol@example.com")
	a := details.NewActions(s, &countingCache{}, &fakeClipboard{})

	p := participant("Carol", "carol@example.com")
	if _, err := a.ShowContact(context.Background(), p); !errors.Is(err, details.ErrNotInContacts) {
		t.Errorf("expected ErrNotInContacts, got %v", err)
	}

	p.IsInContacts = true
	p.Contact = seeded
	p.ContactLookupURI = seeded.LookupURI()
	c, err := a.ShowContact(context.Background(), p)
	if err != nil || c.ID != seeded.ID || len(c.EmailAddresses) != 1 {
		t.Errorf("expected seeded contact, got %+v (err %v)", c, err)
	}
}
