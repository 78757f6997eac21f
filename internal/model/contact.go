package model

import (
	"strings"
	"time"

	"github.com/nhle/mailcontacts/internal/mail"
)

// LookupURIScheme prefixes contact lookup URIs handed to the UI.
const LookupURIScheme = "contact:"

// Contact is an address book entry associated with one or more email
// addresses.
type Contact struct {
	// ID is the address book row identifier.
	ID int64 `db:"id" json:"id"`

	// LookupKey is a stable identifier that survives edits to the
	// contact; it is what the UI uses to open the contact.
	LookupKey string `db:"lookup_key" json:"lookup_key"`

	// DisplayName is the name shown for the contact.
	DisplayName string `db:"display_name" json:"display_name"`

	// EmailAddresses lists every address that resolves to this contact.
	EmailAddresses []mail.EmailAddress `db:"-" json:"email_addresses"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LookupURI returns the URI used to open the contact.
func (c Contact) LookupURI() string {
	return LookupURIScheme + c.LookupKey
}

// Initials returns up to two upper-case letters for the contact badge.
func (c Contact) Initials() string {
	return Initials(c.DisplayName)
}

// Initials builds a badge from the first letters of the first two words
// of name.
func Initials(name string) string {
	var out []rune
	start := true
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t' || r == '.' || r == '-':
			start = true
		case start:
			out = append(out, r)
			start = false
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}
