package credential

import "testing"

func TestIMAPKey(t *testing.T) {
	if got := IMAPKey("alice@example.com"); got != "imap-alice@example.com" {
		t.Errorf("expected imap-alice@example.com, got %q", got)
	}
}

func TestIMAPPasswordPrefersEnvironment(t *testing.T) {
	t.Setenv(passwordEnv, "s3cret")

	pw, err := IMAPPassword("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pw != "s3cret" {
		t.Errorf("expected password from env, got %q", pw)
	}
}
