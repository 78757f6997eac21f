package source

import (
	"bufio"
	"fmt"
	"io"

	"github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// ParseHeader reads an RFC 5322 header block from r. Anything after the
// blank line separating header and body is left unread.
func ParseHeader(r io.Reader) (gomail.Header, error) {
	h, err := textproto.ReadHeader(bufio.NewReader(r))
	if err != nil {
		return gomail.Header{}, fmt.Errorf("reading message header: %w", err)
	}
	return gomail.Header{Header: message.Header{Header: h}}, nil
}
