// Package details builds the participant view of a message: who sent
// it, who received it, and which of those people are in the address book.
package details

import (
	"time"

	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
)

// Participant is a sender or recipient of a message, resolved against
// the address book.
type Participant struct {
	// Address is the header address including the personal name.
	Address mail.Address

	// DisplayName is the contact's name when the address is in the
	// address book, otherwise the header's personal name. May be empty.
	DisplayName string

	// EmailAddress is the bare mailbox address.
	EmailAddress mail.EmailAddress

	IsInContacts bool

	// ContactLookupURI opens the contact; empty unless IsInContacts.
	ContactLookupURI string

	// Contact is the resolved address book entry, if any.
	Contact *model.Contact
}

// HasPersonalName reports whether the header carried a display name.
func (p Participant) HasPersonalName() bool {
	return p.Address.Name != ""
}

// Initials returns the badge shown in place of a contact picture.
func (p Participant) Initials() string {
	if p.DisplayName != "" {
		return model.Initials(p.DisplayName)
	}
	return model.Initials(string(p.EmailAddress))
}

// MessageDetails holds every participant section of a message.
type MessageDetails struct {
	Subject string

	// Date is nil when the message has no parseable Date header.
	Date *time.Time

	From    []Participant
	Sender  []Participant
	ReplyTo []Participant
	To      []Participant
	Cc      []Participant
	Bcc     []Participant

	// Folder is nil when the message was not loaded from a mailbox.
	Folder *model.FolderInfo
}

// Participants returns all participants in display order.
func (d *MessageDetails) Participants() []Participant {
	var out []Participant
	for _, s := range d.sections() {
		out = append(out, s.participants...)
	}
	return out
}

// Appearance holds the display preferences for the details sheet.
type Appearance struct {
	ShowContactPicture            bool
	AlwaysHideAddToContactsButton bool
}

// ShowAddToContacts reports whether the add-to-contacts affordance is
// offered for p.
func (a Appearance) ShowAddToContacts(p Participant) bool {
	return !a.AlwaysHideAddToContactsButton && !p.IsInContacts
}

// AppearanceFromConfig maps display settings to an Appearance.
func AppearanceFromConfig(cfg model.DisplayConfig) Appearance {
	return Appearance{
		ShowContactPicture:            cfg.ShowContactPicture,
		AlwaysHideAddToContactsButton: cfg.AlwaysHideAddToContacts,
	}
}

// State is the load state of the details sheet.
type State int

const (
	StateLoading State = iota
	StateError
	StateDataLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateDataLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}
