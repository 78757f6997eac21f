package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/store"
	"github.com/nhle/mailcontacts/tests/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)

	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("expected schema version 2, got %d", v)
	}
}

func TestGetContactForUnknownAddressReturnsNil(t *testing.T) {
	s := testutil.NewTestStore(t)

	c, err := s.GetContactFor(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil contact, got %+v", c)
	}

	ok, err := s.HasContactFor(context.Background(), "nobody@example.com")
	if err != nil || ok {
		t.Errorf("expected false, got %v (err %v)", ok, err)
	}
}

func TestAddContactAndLookup(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	added := testutil.SeedContact(t, s, " Alice Liddell ", "alice@example.com", "Alice@Work.example.com")
	if added.ID == 0 || added.LookupKey == "" {
		t.Fatalf("expected generated id and lookup key, got %+v", added)
	}
	if added.DisplayName != "Alice Liddell" {
		t.Errorf("expected trimmed name, got %q", added.DisplayName)
	}

	c, err := s.GetContactFor(ctx, "alice@work.example.com")
	if err != nil {
		t.Fatalf("GetContactFor: %v", err)
	}
	if c == nil || c.ID != added.ID {
		t.Fatalf("expected contact %d, got %+v", added.ID, c)
	}
	if len(c.EmailAddresses) != 2 {
		t.Errorf("expected 2 addresses, got %v", c.EmailAddresses)
	}
	if c.LookupURI() != model.LookupURIScheme+added.LookupKey {
		t.Errorf("unexpected lookup URI %q", c.LookupURI())
	}

	ok, err := s.HasContactFor(ctx, "alice@example.com")
	if err != nil || !ok {
		t.Errorf("expected true, got %v (err %v)", ok, err)
	}
}

func TestAddContactRejectsDuplicateAddress(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.SeedContact(t, s, "Alice", "alice@example.com")

	_, err := s.AddContact(context.Background(), "Other Alice", []mail.EmailAddress{"alice@example.com"})
	if !errors.Is(err, store.ErrDuplicateAddress) {
		t.Fatalf("expected ErrDuplicateAddress, got %v", err)
	}

	n, _ := s.GetContactCount(context.Background())
	if n != 1 {
		t.Errorf("expected the failed insert to roll back, got %d contacts", n)
	}
}

func TestAddContactRequiresAddress(t *testing.T) {
	s := testutil.NewTestStore(t)

	if _, err := s.AddContact(context.Background(), "Nameless", nil); err == nil {
		t.Error("expected an error for a contact without addresses")
	}
}

func TestUpdateAndDeleteContact(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	c := testutil.SeedContact(t, s, "Bob", "bob@example.com")

	c.DisplayName = "Robert"
	if err := s.UpdateContact(ctx, *c); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}

	got, err := s.GetContactByLookupKey(ctx, c.LookupKey)
	if err != nil {
		t.Fatalf("GetContactByLookupKey: %v", err)
	}
	if got.DisplayName != "Robert" {
		t.Errorf("expected Robert, got %q", got.DisplayName)
	}

	if err := s.DeleteContact(ctx, c.ID); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}

	if _, err := s.GetContactByID(ctx, c.ID); !store.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if ok, _ := s.HasContactFor(ctx, "bob@example.com"); ok {
		t.Error("expected addresses to cascade on delete")
	}
	if err := s.DeleteContact(ctx, c.ID); !store.IsNotFound(err) {
		t.Errorf("expected not found deleting twice, got %v", err)
	}
}

func TestAddAndRemoveEmailAddress(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	c := testutil.SeedContact(t, s, "Carol", "carol@example.com")

	if err := s.AddEmailAddress(ctx, c.ID, "carol@home.example.com"); err != nil {
		t.Fatalf("AddEmailAddress: %v", err)
	}
	if err := s.AddEmailAddress(ctx, 9999, "ghost@example.com"); !store.IsNotFound(err) {
		t.Errorf("expected not found for unknown contact, got %v", err)
	}

	got, _ := s.GetContactByID(ctx, c.ID)
	if len(got.EmailAddresses) != 2 {
		t.Fatalf("expected 2 addresses, got %v", got.EmailAddresses)
	}

	if err := s.RemoveEmailAddress(ctx, "carol@example.com"); err != nil {
		t.Fatalf("RemoveEmailAddress: %v", err)
	}
	if ok, _ := s.HasContactFor(ctx, "carol@example.com"); ok {
		t.Error("expected removed address to no longer resolve")
	}
}

func TestGetContactsFiltersAndOrders(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedContact(t, s, "zed", "zed@example.com")
	testutil.SeedContact(t, s, "Anna", "anna@example.org")
	testutil.SeedContact(t, s, "mallory", "mallory@evil.example.net")

	all, err := s.GetContacts(ctx, store.ContactFilter{})
	if err != nil {
		t.Fatalf("GetContacts: %v", err)
	}
	if len(all) != 3 || all[0].DisplayName != "Anna" || all[2].DisplayName != "zed" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if len(all[0].EmailAddresses) != 1 {
		t.Errorf("expected addresses attached, got %v", all[0].EmailAddresses)
	}

	q := "evil"
	filtered, err := s.GetContacts(ctx, store.ContactFilter{Query: &q})
	if err != nil {
		t.Fatalf("GetContacts: %v", err)
	}
	if len(filtered) != 1 || filtered[0].DisplayName != "mallory" {
		t.Errorf("expected only mallory, got %+v", filtered)
	}

	page, _ := s.GetContacts(ctx, store.ContactFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].DisplayName != "mallory" {
		t.Errorf("expected second page to hold mallory, got %+v", page)
	}
}

func TestSearchContactsRanksFuzzyMatches(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	testutil.SeedContact(t, s, "Alice Liddell", "alice@example.com")
	testutil.SeedContact(t, s, "Bob Builder", "bob@example.com")

	got, err := s.SearchContacts(ctx, "alic", 10)
	if err != nil {
		t.Fatalf("SearchContacts: %v", err)
	}
	if len(got) == 0 || got[0].DisplayName != "Alice Liddell" {
		t.Errorf("expected Alice first, got %+v", got)
	}

	none, _ := s.SearchContacts(ctx, "qqqq", 10)
	if len(none) != 0 {
		t.Errorf("expected no matches, got %+v", none)
	}

	limited, _ := s.SearchContacts(ctx, "", 1)
	if len(limited) != 1 {
		t.Errorf("expected limit to apply to empty query, got %d", len(limited))
	}
}
