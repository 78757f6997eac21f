package email

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"
	"github.com/rs/zerolog/log"

	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/source"
)

// IMAPClient wraps go-imap v2 for loading message headers and listing
// recent envelopes.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
}

var (
	_ source.Loader          = (*IMAPClient)(nil)
	_ source.EnvelopeFetcher = (*IMAPClient)(nil)
)

// NewIMAPClient creates a new IMAP client configuration. mailbox is the
// default folder for envelope fetches and refs without a folder.
func NewIMAPClient(
	host, port, username, password string, tls bool, mailbox string,
) *IMAPClient {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		mailbox:  mailbox,
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout/Close on the returned client.
func (c *IMAPClient) Connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.AuthError{
			Server: addr,
			Message: fmt.Sprintf(
				"authentication failed for %s: %v",
				c.username, err,
			),
		}
	}

	return client, nil
}

// Load fetches the header of the message with ref.UID in ref.Folder
// (or the default mailbox) without marking it as seen.
func (c *IMAPClient) Load(
	ctx context.Context, ref source.MessageRef,
) (*source.Message, error) {
	folder := ref.Folder
	if folder == "" {
		folder = c.mailbox
	}

	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", folder, err)
	}

	headerSection := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierHeader,
		Peek:      true,
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(imap.UID(ref.UID)), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{headerSection},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("UID %d in %s: %w", ref.UID, folder, source.ErrMessageNotFound)
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}

	raw := buf.FindBodySection(headerSection)
	if raw == nil {
		return nil, fmt.Errorf("UID %d in %s: server returned no header", ref.UID, folder)
	}

	header, err := source.ParseHeader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("closing fetch: %w", err)
	}

	ref.Folder = folder
	return &source.Message{
		Ref:    ref,
		Header: header,
		Folder: &model.FolderInfo{
			DisplayName: folder,
			Type:        c.folderType(client, folder),
		},
	}, nil
}

// folderType prefers the server's special-use attributes and falls back
// to guessing from the name.
func (c *IMAPClient) folderType(client *imapclient.Client, folder string) model.FolderType {
	if folder == "INBOX" {
		return model.FolderTypeInbox
	}

	mailboxes, err := client.List("", folder, &imap.ListOptions{ReturnSpecialUse: true}).Collect()
	if err != nil {
		log.Debug().Err(err).Str("folder", folder).Msg("listing special-use attributes")
		return model.FolderTypeFromName(folder)
	}

	for _, mbox := range mailboxes {
		for _, attr := range mbox.Attrs {
			switch attr {
			case imap.MailboxAttrSent:
				return model.FolderTypeSent
			case imap.MailboxAttrDrafts:
				return model.FolderTypeDrafts
			case imap.MailboxAttrTrash:
				return model.FolderTypeTrash
			case imap.MailboxAttrJunk:
				return model.FolderTypeSpam
			case imap.MailboxAttrArchive, imap.MailboxAttrAll:
				return model.FolderTypeArchive
			}
		}
	}
	return model.FolderTypeFromName(folder)
}

// FetchEnvelopes connects to IMAP, selects the default mailbox, searches
// for messages received since the given time, and returns the envelopes
// of the most recent ones (at most limit when limit > 0).
func (c *IMAPClient) FetchEnvelopes(
	ctx context.Context, since time.Time, limit int,
) ([]source.Envelope, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(c.mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", c.mailbox, err)
	}

	searchData, err := client.UIDSearch(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Take the most recent UIDs.
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	})
	defer fetchCmd.Close()

	var envelopes []source.Envelope
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			log.Warn().Err(err).Msg("skipping unreadable envelope")
			continue
		}

		envelopes = append(envelopes, envelopeFromBuffer(buf))
	}

	if err := fetchCmd.Close(); err != nil {
		return envelopes, fmt.Errorf("fetching envelopes: %w", err)
	}

	return envelopes, nil
}

// envelopeFromBuffer extracts an Envelope from a FetchMessageBuffer.
func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) source.Envelope {
	env := source.Envelope{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		env.MessageID = buf.Envelope.MessageID
		env.Subject = buf.Envelope.Subject
		env.Date = buf.Envelope.Date
		env.From = convertAddresses(buf.Envelope.From)
		env.To = convertAddresses(buf.Envelope.To)
		env.Cc = convertAddresses(buf.Envelope.Cc)
	}

	return env
}

// convertAddresses maps IMAP envelope addresses to mail addresses,
// dropping group syntax markers which carry no mailbox.
func convertAddresses(in []imap.Address) []*gomail.Address {
	out := make([]*gomail.Address, 0, len(in))
	for _, a := range in {
		if a.IsGroupStart() || a.IsGroupEnd() {
			continue
		}
		addr := a.Addr()
		if addr == "" {
			continue
		}
		out = append(out, &gomail.Address{Name: a.Name, Address: addr})
	}
	return out
}
