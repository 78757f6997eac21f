package testutil

import (
	"context"
	"testing"

	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/store"
)

// NewTestStore creates an in-memory address book with all migrations
// applied. It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedContact adds a contact owning addrs and fails the test on error.
func SeedContact(t *testing.T, s store.AddressBook, name string, addrs ...string) *model.Contact {
	t.Helper()

	parsed, err := mail.ParseEmailAddresses(addrs)
	if err != nil {
		t.Fatalf("parsing seed addresses: %v", err)
	}

	c, err := s.AddContact(context.Background(), name, parsed)
	if err != nil {
		t.Fatalf("seeding contact %q: %v", name, err)
	}
	return c
}
