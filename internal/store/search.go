package store

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nhle/mailcontacts/internal/model"
)

// contactSource exposes contacts to the fuzzy matcher as
// "display name <address> <address>..." strings.
type contactSource []model.Contact

func (cs contactSource) Len() int { return len(cs) }

func (cs contactSource) String(i int) string {
	c := cs[i]
	parts := make([]string, 0, len(c.EmailAddresses)+1)
	parts = append(parts, c.DisplayName)
	for _, a := range c.EmailAddresses {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// SearchContacts ranks every contact against query with fuzzy matching
// on name and addresses, best match first. An empty query returns the
// contacts in name order.
func (s *SQLiteStore) SearchContacts(
	ctx context.Context,
	query string,
	limit int,
) ([]model.Contact, error) {
	all, err := s.GetContacts(ctx, ContactFilter{})
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return truncate(all, limit), nil
	}

	matches := fuzzy.FindFrom(query, contactSource(all))
	result := make([]model.Contact, 0, len(matches))
	for _, m := range matches {
		result = append(result, all[m.Index])
	}
	return truncate(result, limit), nil
}

func truncate(contacts []model.Contact, limit int) []model.Contact {
	if limit > 0 && len(contacts) > limit {
		return contacts[:limit]
	}
	return contacts
}
