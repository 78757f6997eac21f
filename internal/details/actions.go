package details

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"

	"github.com/nhle/mailcontacts/internal/contact"
	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
)

var (
	// ErrNoParticipantName is returned when copying a name for an address
	// without a personal part.
	ErrNoParticipantName = errors.New("participant has no name")

	// ErrNotInContacts is returned when opening a participant that is not
	// in the address book.
	ErrNotInContacts = errors.New("participant is not in contacts")
)

// MenuAction is an entry of the participant overflow menu.
type MenuAction int

const (
	ActionComposeTo MenuAction = iota
	ActionCopyEmailAddress
	ActionCopyNameAndEmailAddress
)

// Label is the menu text.
func (a MenuAction) Label() string {
	switch a {
	case ActionComposeTo:
		return "Compose to"
	case ActionCopyEmailAddress:
		return "Copy email address"
	case ActionCopyNameAndEmailAddress:
		return "Copy name and email address"
	default:
		return ""
	}
}

// OverflowMenu returns the menu entries offered for p. Copying the name
// is only offered when the header carried one.
func OverflowMenu(p Participant) []MenuAction {
	menu := []MenuAction{ActionComposeTo, ActionCopyEmailAddress}
	if p.HasPersonalName() {
		menu = append(menu, ActionCopyNameAndEmailAddress)
	}
	return menu
}

// ComposeURI returns a mailto: URI addressed to p. Characters such as
// '?' and '#' that are legal in a local part are percent-encoded.
func ComposeURI(p Participant) string {
	return "mailto:" + url.PathEscape(p.Address.Address)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// AddressBook is the part of the address book the actions need.
type AddressBook interface {
	AddContact(ctx context.Context, name string, addresses []mail.EmailAddress) (*model.Contact, error)
	GetContactByLookupKey(ctx context.Context, lookupKey string) (*model.Contact, error)
}

// Actions performs participant actions.
type Actions struct {
	book      AddressBook
	cache     contact.CachingRepository
	clipboard Clipboard
}

// NewActions wires participant actions. cache is cleared whenever the
// address book changes.
func NewActions(book AddressBook, cache contact.CachingRepository, cb Clipboard) *Actions {
	if cb == nil {
		cb = SystemClipboard{}
	}
	return &Actions{book: book, cache: cache, clipboard: cb}
}

// CopyEmailAddress copies the bare address and returns the copied text.
func (a *Actions) CopyEmailAddress(p Participant) (string, error) {
	text := p.Address.Address
	if err := a.clipboard.WriteAll(text); err != nil {
		return "", fmt.Errorf("copying email address: %w", err)
	}
	return text, nil
}

// CopyNameAndEmailAddress copies the RFC 5322 form "Name <address>".
func (a *Actions) CopyNameAndEmailAddress(p Participant) (string, error) {
	if !p.HasPersonalName() {
		return "", ErrNoParticipantName
	}
	text := p.Address.String()
	if err := a.clipboard.WriteAll(text); err != nil {
		return "", fmt.Errorf("copying name and email address: %w", err)
	}
	return text, nil
}

// AddToContacts stores p in the address book using the header's personal
// name, then clears the lookup cache so the new entry is visible.
func (a *Actions) AddToContacts(ctx context.Context, p Participant, name string) (*model.Contact, error) {
	if name == "" {
		name = p.Address.Name
	}
	c, err := a.book.AddContact(ctx, name, []mail.EmailAddress{p.EmailAddress})
	if err != nil {
		return nil, fmt.Errorf("adding %s to contacts: %w", p.EmailAddress, err)
	}
	a.cache.ClearCache()
	log.Info().Str("address", p.EmailAddress.String()).Int64("contact_id", c.ID).Msg("added contact")
	return c, nil
}

// ShowContact returns the address book entry behind p.
func (a *Actions) ShowContact(ctx context.Context, p Participant) (*model.Contact, error) {
	if !p.IsInContacts || p.Contact == nil {
		return nil, ErrNotInContacts
	}
	c, err := a.book.GetContactByLookupKey(ctx, p.Contact.LookupKey)
	if err != nil {
		return nil, fmt.Errorf("opening contact %s: %w", p.ContactLookupURI, err)
	}
	return c, nil
}
