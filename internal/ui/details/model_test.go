package details

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	detailsvc "github.com/nhle/mailcontacts/internal/details"
	"github.com/nhle/mailcontacts/internal/keys"
	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
)

type fakeClipboard struct{ text string }

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

type noopCache struct{}

func (noopCache) ClearCache() {}

func person(name, addr string, inContacts bool) detailsvc.Participant {
	p := detailsvc.Participant{
		Address:      mail.Address{Name: name, Address: addr},
		DisplayName:  name,
		EmailAddress: mail.NewEmailAddress(addr),
		IsInContacts: inContacts,
	}
	if inContacts {
		p.Contact = &model.Contact{ID: 1, LookupKey: "k1", DisplayName: name}
		p.ContactLookupURI = p.Contact.LookupURI()
	}
	return p
}

func sampleDetails() *detailsvc.MessageDetails {
	date := time.Date(2006, 1, 3, 15, 4, 0, 0, time.UTC)
	return &detailsvc.MessageDetails{
		Date: &date,
		From: []detailsvc.Participant{person("Alice", "alice@example.com", true)},
		To: []detailsvc.Participant{
			person("", "bob@example.com", false),
			person("Carol", "carol@example.com", false),
		},
		Folder: &model.FolderInfo{DisplayName: "INBOX", Type: model.FolderTypeInbox},
	}
}

func newLoaded(t *testing.T, cb *fakeClipboard) Model {
	t.Helper()
	actions := detailsvc.NewActions(nil, noopCache{}, cb)
	m := New(actions, detailsvc.Appearance{ShowContactPicture: true}, keys.DefaultKeyMap(), 80, 24)
	m.SetLocation(time.UTC)
	m, _ = m.Update(LoadedMsg{Details: sampleDetails()})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadingAndErrorStates(t *testing.T) {
	m := New(detailsvc.NewActions(nil, noopCache{}, &fakeClipboard{}), detailsvc.Appearance{}, keys.DefaultKeyMap(), 80, 24)
	if m.State() != detailsvc.StateLoading {
		t.Fatalf("expected loading state, got %s", m.State())
	}
	if !strings.Contains(m.View(), "Loading message details") {
		t.Error("expected loading text in view")
	}

	m, _ = m.Update(LoadedMsg{Err: errors.New("message vanished")})
	if m.State() != detailsvc.StateError {
		t.Fatalf("expected error state, got %s", m.State())
	}
	if !strings.Contains(m.View(), "message vanished") {
		t.Error("expected error text in view")
	}
}

func TestCursorSkipsNonParticipantRows(t *testing.T) {
	m := newLoaded(t, &fakeClipboard{})

	p, ok := m.Selected()
	if !ok || p.EmailAddress != "alice@example.com" {
		t.Fatalf("expected cursor on first From participant, got %+v", p)
	}

	m, _ = m.Update(runes("j"))
	if p, _ := m.Selected(); p.EmailAddress != "bob@example.com" {
		t.Errorf("expected cursor on bob, got %s", p.EmailAddress)
	}

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	if p, _ := m.Selected(); p.EmailAddress != "carol@example.com" {
		t.Errorf("expected cursor to stop on last participant, got %s", p.EmailAddress)
	}

	m, _ = m.Update(runes("k"))
	m, _ = m.Update(runes("k"))
	m, _ = m.Update(runes("k"))
	if p, _ := m.Selected(); p.EmailAddress != "alice@example.com" {
		t.Errorf("expected cursor back on alice, got %s", p.EmailAddress)
	}
}

func TestViewRendersSections(t *testing.T) {
	m := newLoaded(t, &fakeClipboard{})
	view := m.View()

	for _, want := range []string{"Tue, 3 Jan 2006 15:04", "From", "To", "(2)", "Carol", "bob@example.com", "INBOX"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestOverflowMenuCompose(t *testing.T) {
	m := newLoaded(t, &fakeClipboard{})

	m, _ = m.Update(runes("o"))
	if !strings.Contains(m.View(), "Copy email address") {
		t.Fatal("expected overflow menu in view")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected compose command")
	}
	msg, ok := cmd().(ComposeMsg)
	if !ok || msg.URI != "mailto:alice@example.com" {
		t.Errorf("expected ComposeMsg for alice, got %#v", msg)
	}
	if strings.Contains(m.View(), "Copy email address") {
		t.Error("expected menu to close after selection")
	}
}

func TestCopyAddress(t *testing.T) {
	cb := &fakeClipboard{}
	m := newLoaded(t, cb)

	m, cmd := m.Update(runes("y"))
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	m, _ = m.Update(cmd())

	if cb.text != "alice@example.com" {
		t.Errorf("expected clipboard to hold alice's address, got %q", cb.text)
	}
	if !strings.Contains(m.View(), "Copied alice@example.com") {
		t.Error("expected confirmation in view")
	}
}

func TestCopyNameIgnoredWithoutPersonalName(t *testing.T) {
	m := newLoaded(t, &fakeClipboard{})
	m, _ = m.Update(runes("j"))

	if _, cmd := m.Update(runes("Y")); cmd != nil {
		t.Error("expected no command for a bare address")
	}
}

func TestAddFormOnlyForUnknownParticipants(t *testing.T) {
	m := newLoaded(t, &fakeClipboard{})

	m, _ = m.Update(runes("a"))
	if m.Capturing() {
		t.Fatal("expected no add form for a participant already in contacts")
	}

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("a"))
	if !m.Capturing() {
		t.Error("expected add form for a participant outside the address book")
	}
}

func TestEscCloses(t *testing.T) {
	m := newLoaded(t, &fakeClipboard{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected close command")
	}
	if _, ok := cmd().(CloseMsg); !ok {
		t.Error("expected CloseMsg")
	}
}
