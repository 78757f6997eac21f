package details

import (
	"context"
	"fmt"

	gomail "github.com/emersion/go-message/mail"
	"github.com/rs/zerolog/log"

	"github.com/nhle/mailcontacts/internal/contact"
	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/source"
)

// Builder turns message headers into MessageDetails, resolving every
// participant through the contact repository.
type Builder struct {
	repo contact.Repository
}

// NewBuilder creates a Builder backed by repo.
func NewBuilder(repo contact.Repository) *Builder {
	return &Builder{repo: repo}
}

// Build resolves the participants of msg. Contacts are only consulted
// when the repository reports permission; otherwise nobody is in the
// address book. Data source errors abort the build.
func (b *Builder) Build(ctx context.Context, msg *source.Message) (*MessageDetails, error) {
	h := msg.Header
	lookup := b.repo.HasContactPermission()

	d := &MessageDetails{Folder: msg.Folder}

	if subject, err := h.Subject(); err == nil {
		d.Subject = subject
	} else {
		log.Debug().Err(err).Str("message", msg.Ref.String()).Msg("undecodable subject")
		d.Subject = h.Get("Subject")
	}

	if h.Has("Date") {
		if date, err := h.Date(); err == nil {
			d.Date = &date
		} else {
			log.Debug().Err(err).Str("message", msg.Ref.String()).Msg("unparseable date")
		}
	}

	from := addressList(h, "From", msg.Ref)

	fields := []struct {
		dst  *[]Participant
		list []*mail.Address
	}{
		{&d.From, from},
		{&d.Sender, unlessSame(addressList(h, "Sender", msg.Ref), from)},
		{&d.ReplyTo, unlessSame(addressList(h, "Reply-To", msg.Ref), from)},
		{&d.To, addressList(h, "To", msg.Ref)},
		{&d.Cc, addressList(h, "Cc", msg.Ref)},
		{&d.Bcc, addressList(h, "Bcc", msg.Ref)},
	}

	for _, f := range fields {
		participants, err := b.participants(ctx, f.list, lookup)
		if err != nil {
			return nil, err
		}
		*f.dst = participants
	}

	return d, nil
}

func (b *Builder) participants(
	ctx context.Context,
	addrs []*mail.Address,
	lookup bool,
) ([]Participant, error) {
	out := make([]Participant, 0, len(addrs))
	for _, a := range addrs {
		p, err := b.participant(ctx, a, lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *Builder) participant(ctx context.Context, a *mail.Address, lookup bool) (Participant, error) {
	p := Participant{
		Address:      *a,
		DisplayName:  a.Name,
		EmailAddress: mail.FromAddress(a),
	}
	if !lookup || p.EmailAddress.IsZero() {
		return p, nil
	}

	c, err := b.repo.GetContactFor(ctx, p.EmailAddress)
	if err != nil {
		return Participant{}, fmt.Errorf("resolving participant %s: %w", p.EmailAddress, err)
	}
	if c != nil {
		p.IsInContacts = true
		p.Contact = c
		p.ContactLookupURI = c.LookupURI()
		if c.DisplayName != "" {
			p.DisplayName = c.DisplayName
		}
	}
	return p, nil
}

// addressList parses an address header, logging and dropping malformed
// fields rather than failing the whole message.
func addressList(h gomail.Header, key string, ref source.MessageRef) []*mail.Address {
	if !h.Has(key) {
		return nil
	}
	list, err := h.AddressList(key)
	if err != nil {
		log.Warn().Err(err).Str("header", key).Str("message", ref.String()).Msg("malformed address header")
		return nil
	}
	return list
}

// unlessSame drops list when it names exactly the same mailboxes as ref.
func unlessSame(list, ref []*mail.Address) []*mail.Address {
	if len(list) != len(ref) {
		return list
	}
	for i := range list {
		if mail.FromAddress(list[i]) != mail.FromAddress(ref[i]) {
			return list
		}
	}
	return nil
}

// Service loads a message and builds its details.
type Service struct {
	loader  source.Loader
	builder *Builder
}

// NewService wires a loader to a builder.
func NewService(loader source.Loader, builder *Builder) *Service {
	return &Service{loader: loader, builder: builder}
}

// LoadDetails loads ref and resolves its participants.
func (s *Service) LoadDetails(ctx context.Context, ref source.MessageRef) (*MessageDetails, error) {
	msg, err := s.loader.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading message %s: %w", ref, err)
	}
	return s.builder.Build(ctx, msg)
}
