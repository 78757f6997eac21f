package store

import (
	"context"
	"errors"

	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
)

var (
	// ErrContactNotFound is returned when a contact id or lookup key does
	// not exist.
	ErrContactNotFound = errors.New("contact not found")

	// ErrDuplicateAddress is returned when an email address already
	// belongs to a contact.
	ErrDuplicateAddress = errors.New("email address already belongs to a contact")
)

// IsNotFound reports whether err (or any error in its chain) is
// ErrContactNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContactNotFound)
}

// ContactFilter controls filtering and pagination for contact listings.
type ContactFilter struct {
	Query  *string // substring match on name or address
	Limit  int
	Offset int
}

// AddressBook defines the persistence interface for contacts and the
// email addresses that resolve to them.
type AddressBook interface {
	// === Lookup (contact data source) ===

	GetContactFor(ctx context.Context, address mail.EmailAddress) (*model.Contact, error)
	HasContactFor(ctx context.Context, address mail.EmailAddress) (bool, error)

	// === Contact CRUD ===

	AddContact(ctx context.Context, name string, addresses []mail.EmailAddress) (*model.Contact, error)
	UpdateContact(ctx context.Context, contact model.Contact) error
	DeleteContact(ctx context.Context, id int64) error
	GetContactByID(ctx context.Context, id int64) (*model.Contact, error)
	GetContactByLookupKey(ctx context.Context, lookupKey string) (*model.Contact, error)
	GetContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error)
	GetContactCount(ctx context.Context) (int, error)

	// === Address management ===

	AddEmailAddress(ctx context.Context, contactID int64, address mail.EmailAddress) error
	RemoveEmailAddress(ctx context.Context, address mail.EmailAddress) error

	// === Search ===

	SearchContacts(ctx context.Context, query string, limit int) ([]model.Contact, error)
}
