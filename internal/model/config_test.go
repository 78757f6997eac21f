package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.AddressBook.Permission {
		t.Error("expected address book permission to default to true")
	}
	if cfg.IMAP.Mailbox != "INBOX" {
		t.Errorf("expected INBOX, got %q", cfg.IMAP.Mailbox)
	}
	if cfg.IMAP.HarvestLimit != 200 {
		t.Errorf("expected harvest limit 200, got %d", cfg.IMAP.HarvestLimit)
	}
	if !cfg.Display.ShowContactPicture {
		t.Error("expected contact pictures to be shown by default")
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
address_book:
  path: /tmp/book.db
  permission: false
imap:
  host: imap.example.com
  username: alice
display:
  always_hide_add_to_contacts: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.AddressBook.Path != "/tmp/book.db" {
		t.Errorf("expected /tmp/book.db, got %q", cfg.AddressBook.Path)
	}
	if cfg.AddressBook.Permission {
		t.Error("expected permission false from file")
	}
	if !cfg.IMAP.Configured() {
		t.Error("expected IMAP to be configured")
	}
	if cfg.IMAP.Port != "993" {
		t.Errorf("expected default port 993, got %q", cfg.IMAP.Port)
	}
	if !cfg.Display.AlwaysHideAddToContacts {
		t.Error("expected always_hide_add_to_contacts true")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MAILCONTACTS_IMAP_HOST", "mail.example.org")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.IMAP.Host != "mail.example.org" {
		t.Errorf("expected host from env, got %q", cfg.IMAP.Host)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.IMAP.Host = "imap.example.net"
	cfg.IMAP.Username = "bob"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.IMAP.Host != "imap.example.net" || loaded.IMAP.Username != "bob" {
		t.Errorf("unexpected IMAP config after round trip: %+v", loaded.IMAP)
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"alice liddell":  "AL",
		"Bob":            "B",
		"":               "?",
		"jean-luc picard": "JL",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, expected %q", in, got, want)
		}
	}
}
