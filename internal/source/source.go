package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/nhle/mailcontacts/internal/model"
)

// AuthError indicates that authentication has failed for a mail source.
type AuthError struct {
	Server  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Server, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ErrMessageNotFound is returned when a message reference does not
// resolve to a message.
var ErrMessageNotFound = errors.New("message not found")

// MessageRef identifies a message either in an IMAP mailbox (Folder +
// UID) or on disk (Path).
type MessageRef struct {
	Folder string
	UID    uint32
	Path   string
}

func (r MessageRef) String() string {
	if r.Path != "" {
		return r.Path
	}
	return fmt.Sprintf("%s/%d", r.Folder, r.UID)
}

// Message is a loaded message header plus the folder it came from.
type Message struct {
	Ref    MessageRef
	Header gomail.Header

	// Folder is nil when the message was not loaded from a mailbox.
	Folder *model.FolderInfo
}

// Loader loads the header of a referenced message.
type Loader interface {
	Load(ctx context.Context, ref MessageRef) (*Message, error)
}

// Envelope holds the participant data of a message as reported by the
// server, without fetching the body.
type Envelope struct {
	MessageID string
	Subject   string
	Date      time.Time
	From      []*gomail.Address
	To        []*gomail.Address
	Cc        []*gomail.Address
	UID       uint32
}

// Participants returns every address on the envelope.
func (e Envelope) Participants() []*gomail.Address {
	out := make([]*gomail.Address, 0, len(e.From)+len(e.To)+len(e.Cc))
	out = append(out, e.From...)
	out = append(out, e.To...)
	out = append(out, e.Cc...)
	return out
}

// EnvelopeFetcher lists envelopes of recent messages.
type EnvelopeFetcher interface {
	FetchEnvelopes(ctx context.Context, since time.Time, limit int) ([]Envelope, error)
}
