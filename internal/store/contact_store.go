package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
)

const contactColumns = "c.id, c.lookup_key, c.display_name, c.created_at, c.updated_at"

// GetContactFor returns the contact owning address, or nil when the
// address is unknown.
func (s *SQLiteStore) GetContactFor(
	ctx context.Context,
	address mail.EmailAddress,
) (*model.Contact, error) {
	var c model.Contact
	err := s.db.GetContext(ctx, &c, `
		SELECT `+contactColumns+`
		FROM contacts c
		INNER JOIN contact_emails e ON e.contact_id = c.id
		WHERE e.address = ?`, string(address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact for %s: %w", address, err)
	}

	if err := s.loadAddresses(ctx, s.db, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// HasContactFor reports whether address belongs to any contact.
func (s *SQLiteStore) HasContactFor(
	ctx context.Context,
	address mail.EmailAddress,
) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM contact_emails WHERE address = ?", string(address))
	if err != nil {
		return false, fmt.Errorf("checking contact for %s: %w", address, err)
	}
	return n > 0, nil
}

// AddContact inserts a contact owning the given addresses and returns it
// with its generated id and lookup key.
func (s *SQLiteStore) AddContact(
	ctx context.Context,
	name string,
	addresses []mail.EmailAddress,
) (*model.Contact, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("contact must have at least one email address")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	c := model.Contact{
		LookupKey:   uuid.New().String(),
		DisplayName: strings.TrimSpace(name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO contacts (lookup_key, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		c.LookupKey, c.DisplayName, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	c.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading contact id: %w", err)
	}

	for _, addr := range addresses {
		if err := insertAddress(ctx, tx, c.ID, addr, now); err != nil {
			return nil, err
		}
		c.EmailAddresses = append(c.EmailAddresses, addr)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing contact: %w", err)
	}
	return &c, nil
}

// UpdateContact renames a contact.
func (s *SQLiteStore) UpdateContact(ctx context.Context, contact model.Contact) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE contacts SET display_name = ?, updated_at = ? WHERE id = ?",
		strings.TrimSpace(contact.DisplayName), time.Now().UTC(), contact.ID,
	)
	if err != nil {
		return fmt.Errorf("updating contact %d: %w", contact.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("contact %d: %w", contact.ID, ErrContactNotFound)
	}
	return nil
}

// DeleteContact removes a contact. CASCADE on contact_emails removes its
// addresses.
func (s *SQLiteStore) DeleteContact(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting contact %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("contact %d: %w", id, ErrContactNotFound)
	}
	return nil
}

// GetContactByID retrieves a single contact with its addresses.
func (s *SQLiteStore) GetContactByID(ctx context.Context, id int64) (*model.Contact, error) {
	return s.getContactWhere(ctx, "c.id = ?", id)
}

// GetContactByLookupKey retrieves a single contact by its lookup key.
func (s *SQLiteStore) GetContactByLookupKey(
	ctx context.Context,
	lookupKey string,
) (*model.Contact, error) {
	return s.getContactWhere(ctx, "c.lookup_key = ?", lookupKey)
}

func (s *SQLiteStore) getContactWhere(
	ctx context.Context,
	cond string,
	arg interface{},
) (*model.Contact, error) {
	var c model.Contact
	err := s.db.GetContext(ctx, &c,
		"SELECT "+contactColumns+" FROM contacts c WHERE "+cond, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %v: %w", arg, ErrContactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact %v: %w", arg, err)
	}

	if err := s.loadAddresses(ctx, s.db, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetContacts lists contacts ordered by name.
func (s *SQLiteStore) GetContacts(
	ctx context.Context,
	filter ContactFilter,
) ([]model.Contact, error) {
	var args []interface{}

	query := "SELECT " + contactColumns + " FROM contacts c"
	if filter.Query != nil && *filter.Query != "" {
		query += ` WHERE c.display_name LIKE ?
			OR c.id IN (SELECT contact_id FROM contact_emails WHERE address LIKE ?)`
		q := "%" + *filter.Query + "%"
		args = append(args, q, strings.ToLower(q))
	}
	query += " ORDER BY c.display_name COLLATE NOCASE, c.id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	var contacts []model.Contact
	if err := s.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}

	if err := s.attachAddresses(ctx, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetContactCount returns the number of contacts.
func (s *SQLiteStore) GetContactCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM contacts"); err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return n, nil
}

// AddEmailAddress attaches another address to an existing contact.
func (s *SQLiteStore) AddEmailAddress(
	ctx context.Context,
	contactID int64,
	address mail.EmailAddress,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists,
		"SELECT COUNT(*) FROM contacts WHERE id = ?", contactID); err != nil {
		return fmt.Errorf("checking contact %d: %w", contactID, err)
	}
	if exists == 0 {
		return fmt.Errorf("contact %d: %w", contactID, ErrContactNotFound)
	}

	if err := insertAddress(ctx, tx, contactID, address, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveEmailAddress detaches an address from whichever contact owns it.
func (s *SQLiteStore) RemoveEmailAddress(ctx context.Context, address mail.EmailAddress) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM contact_emails WHERE address = ?", string(address))
	if err != nil {
		return fmt.Errorf("removing address %s: %w", address, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("address %s: %w", address, ErrContactNotFound)
	}
	return nil
}

// insertAddress adds one address row inside tx, rejecting addresses that
// already belong to a contact.
func insertAddress(
	ctx context.Context,
	tx *sqlx.Tx,
	contactID int64,
	address mail.EmailAddress,
	now time.Time,
) error {
	if address.IsZero() {
		return fmt.Errorf("email address must not be empty")
	}

	var owner int
	err := tx.GetContext(ctx, &owner,
		"SELECT COUNT(*) FROM contact_emails WHERE address = ?", string(address))
	if err != nil {
		return fmt.Errorf("checking address %s: %w", address, err)
	}
	if owner > 0 {
		return fmt.Errorf("%s: %w", address, ErrDuplicateAddress)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO contact_emails (address, contact_id, created_at) VALUES (?, ?, ?)",
		string(address), contactID, now,
	)
	if err != nil {
		return fmt.Errorf("adding address %s to contact %d: %w", address, contactID, err)
	}
	return nil
}

// loadAddresses fills c.EmailAddresses.
func (s *SQLiteStore) loadAddresses(ctx context.Context, q sqlx.QueryerContext, c *model.Contact) error {
	var addrs []string
	err := sqlx.SelectContext(ctx, q, &addrs,
		"SELECT address FROM contact_emails WHERE contact_id = ? ORDER BY created_at, address", c.ID)
	if err != nil {
		return fmt.Errorf("querying addresses for contact %d: %w", c.ID, err)
	}

	c.EmailAddresses = make([]mail.EmailAddress, 0, len(addrs))
	for _, a := range addrs {
		c.EmailAddresses = append(c.EmailAddresses, mail.EmailAddress(a))
	}
	return nil
}

// attachAddresses fills EmailAddresses for a batch of contacts with a
// single query.
func (s *SQLiteStore) attachAddresses(ctx context.Context, contacts []model.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	index := make(map[int64]int, len(contacts))
	ids := make([]int64, 0, len(contacts))
	for i, c := range contacts {
		index[c.ID] = i
		ids = append(ids, c.ID)
	}

	query, args, err := sqlx.In(
		"SELECT contact_id, address FROM contact_emails WHERE contact_id IN (?) ORDER BY created_at, address",
		ids,
	)
	if err != nil {
		return fmt.Errorf("building address query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("querying contact addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contactID int64
			address   string
		)
		if err := rows.Scan(&contactID, &address); err != nil {
			return fmt.Errorf("scanning address row: %w", err)
		}
		i := index[contactID]
		contacts[i].EmailAddresses = append(contacts[i].EmailAddresses, mail.EmailAddress(address))
	}
	return rows.Err()
}
