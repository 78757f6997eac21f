package mail

import (
	"fmt"
	"strings"

	gomail "github.com/emersion/go-message/mail"
)

// EmailAddress is a normalized mailbox address (no display name).
// Two EmailAddress values are equal iff they refer to the same mailbox,
// which makes the type usable as a map key.
type EmailAddress string

// Address is a mailbox with an optional display name as it appears in
// a message header.
type Address = gomail.Address

// ParseEmailAddress parses a bare address or a "Name <addr>" form and
// returns the normalized mailbox address.
func ParseEmailAddress(s string) (EmailAddress, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return NewEmailAddress(addr.Address), nil
}

// ParseAddress parses a bare address or a "Name <addr>" form keeping
// the display name.
func ParseAddress(s string) (*Address, error) {
	addr, err := gomail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parsing email address %q: %w", s, err)
	}
	return addr, nil
}

// NewEmailAddress normalizes an already-parsed mailbox address.
func NewEmailAddress(addr string) EmailAddress {
	return EmailAddress(strings.ToLower(strings.TrimSpace(addr)))
}

// FromAddress returns the normalized mailbox address of a header address.
func FromAddress(a *Address) EmailAddress {
	if a == nil {
		return ""
	}
	return NewEmailAddress(a.Address)
}

// ParseEmailAddresses parses each entry and stops at the first invalid one.
func ParseEmailAddresses(values []string) ([]EmailAddress, error) {
	out := make([]EmailAddress, 0, len(values))
	for _, v := range values {
		addr, err := ParseEmailAddress(v)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// String returns the address text.
func (e EmailAddress) String() string { return string(e) }

// IsZero reports whether the address is empty.
func (e EmailAddress) IsZero() bool { return e == "" }

// Domain returns the part after the last '@', or "" when there is none.
func (e EmailAddress) Domain() string {
	i := strings.LastIndexByte(string(e), '@')
	if i < 0 {
		return ""
	}
	return string(e[i+1:])
}
