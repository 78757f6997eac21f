package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/mailcontacts/internal/model"
)

// run executes the root command against a config pointing at a fresh
// address book in a temp dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	c := model.DefaultAppConfig()
	c.AddressBook.Path = filepath.Join(dir, "contacts.db")
	if err := model.SaveConfig(path, c); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAddThenLookup(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "Alice Liddell <Alice@Example.com>")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added Alice Liddell <alice@example.com>") {
		t.Errorf("unexpected add output %q", out)
	}

	out, err = run(t, dir, "lookup", "alice@example.com", "bob@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
	if !strings.Contains(lines[0], "Alice Liddell") || !strings.Contains(lines[0], "contact:") {
		t.Errorf("expected alice resolved, got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "-") {
		t.Errorf("expected bob unresolved, got %q", lines[1])
	}
}

func TestLookupAny(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "add", "carol@example.com", "Carol"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := run(t, dir, "lookup", "--any", "nobody@example.com", "carol@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Errorf("expected true, got %q", out)
	}
	lookupAny = false
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"add", "alice@example.com", "Alice"},
		{"add", "bob@example.com", "Bob"},
	} {
		if _, err := run(t, dir, args...); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	out, err := run(t, dir, "search", "bob")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "bob@example.com") || strings.Contains(out, "alice@example.com") {
		t.Errorf("unexpected search output %q", out)
	}
}

func TestShowPlain(t *testing.T) {
	dir := t.TempDir()
	eml := filepath.Join(dir, "message.eml")
	writeFile(t, eml, "From: Alice <alice@example.com>\r\n"+
		"To: bob@example.com, carol@example.com\r\n"+
		"Subject: Lunch\r\n"+
		"\r\n"+
		"body\r\n")

	if _, err := run(t, dir, "add", "carol@example.com", "Carol C"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := run(t, dir, "show", "--plain", eml)
	showPlain = false
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Subject: Lunch", "No date", "From", "To (2)", "Carol C <carol@example.com>  [contact:", "bob@example.com  [not in contacts]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestShowRequiresMessage(t *testing.T) {
	if _, err := run(t, t.TempDir(), "show"); err == nil {
		t.Error("expected an error without a file or --uid")
	}
}

func TestExecuteClosesLogFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	c := model.DefaultAppConfig()
	c.AddressBook.Path = filepath.Join(dir, "contacts.db")
	if err := model.SaveConfig(path, c); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	t.Cleanup(func() { logFile = "" })

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", path, "--log-file", filepath.Join(dir, "mailcontacts.log"), "show"})

	if err := execute(context.Background()); err == nil {
		t.Fatal("expected show without a message to fail")
	}
	if logOut != nil {
		t.Error("expected the log file to be closed after a failed command")
	}
}

func TestValidatePort(t *testing.T) {
	if err := validatePort("993"); err != nil {
		t.Errorf("expected 993 to be valid, got %v", err)
	}
	if err := validatePort(""); err != nil {
		t.Errorf("expected empty port to be valid, got %v", err)
	}
	if err := validatePort("99x"); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestFormBindingsApply(t *testing.T) {
	fb := bindingsFromConfig(model.DefaultAppConfig())
	fb.host = " imap.example.com "
	fb.username = "me@example.com"

	c := fb.apply(*model.DefaultAppConfig())
	if c.IMAP.Host != "imap.example.com" || !c.IMAP.Configured() {
		t.Errorf("unexpected IMAP config %+v", c.IMAP)
	}
	if c.IMAP.Port != "993" || !c.IMAP.TLS {
		t.Errorf("expected defaults kept, got %+v", c.IMAP)
	}
}
