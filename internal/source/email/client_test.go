package email

import (
	"testing"

	"github.com/emersion/go-imap/v2"
)

func TestConvertAddressesSkipsGroupMarkers(t *testing.T) {
	in := []imap.Address{
		{Name: "Alice", Mailbox: "alice", Host: "example.com"},
		{Mailbox: "undisclosed-recipients"},
		{},
		{Mailbox: "bob", Host: "example.org"},
	}

	out := convertAddresses(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(out))
	}
	if out[0].Name != "Alice" || out[0].Address != "alice@example.com" {
		t.Errorf("unexpected first address %+v", out[0])
	}
	if out[1].Address != "bob@example.org" {
		t.Errorf("unexpected second address %+v", out[1])
	}
}

func TestNewIMAPClientDefaultsMailbox(t *testing.T) {
	c := NewIMAPClient("imap.example.com", "993", "alice", "pw", true, "")
	if c.mailbox != "INBOX" {
		t.Errorf("expected INBOX, got %q", c.mailbox)
	}
}
