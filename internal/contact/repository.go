// Package contact resolves participant email addresses to address book
// entries through a read-through cache.
package contact

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/mailcontacts/internal/mail"
	"github.com/nhle/mailcontacts/internal/model"
)

// DataSource queries the underlying contact store. A nil contact with a
// nil error means the address has no contact.
type DataSource interface {
	GetContactFor(ctx context.Context, address mail.EmailAddress) (*model.Contact, error)
	HasContactFor(ctx context.Context, address mail.EmailAddress) (bool, error)
}

// PermissionResolver reports whether contacts may currently be read.
type PermissionResolver interface {
	HasContactPermission() bool
}

// PermissionFunc adapts a plain function to PermissionResolver.
type PermissionFunc func() bool

func (f PermissionFunc) HasContactPermission() bool { return f() }

// Repository is the contact lookup surface used by the UI.
type Repository interface {
	GetContactFor(ctx context.Context, address mail.EmailAddress) (*model.Contact, error)
	HasContactFor(ctx context.Context, address mail.EmailAddress) (bool, error)
	HasAnyContactFor(ctx context.Context, addresses []mail.EmailAddress) (bool, error)
	HasContactPermission() bool
}

// CachingRepository is implemented by repositories that memoize lookups.
type CachingRepository interface {
	ClearCache()
}

// CachingContactRepository memoizes DataSource lookups per address,
// including negative results, until ClearCache is called. It is safe for
// concurrent use; concurrent first lookups of the same address share a
// single data source query.
type CachingContactRepository struct {
	cache      Cache[mail.EmailAddress, *model.Contact]
	dataSource DataSource
	permission PermissionResolver
	inflight   singleflight.Group

	// generation advances on ClearCache so lookups started before a
	// clear do not repopulate the cache. mu makes the generation check
	// and the store a single step with respect to ClearCache.
	mu         sync.Mutex
	generation uint64
}

var (
	_ Repository        = (*CachingContactRepository)(nil)
	_ CachingRepository = (*CachingContactRepository)(nil)
)

// NewCachingContactRepository wires a repository. A nil cache gets a
// fresh InMemoryCache.
func NewCachingContactRepository(
	cache Cache[mail.EmailAddress, *model.Contact],
	dataSource DataSource,
	permission PermissionResolver,
) *CachingContactRepository {
	if cache == nil {
		cache = NewInMemoryCache[mail.EmailAddress, *model.Contact]()
	}
	return &CachingContactRepository{
		cache:      cache,
		dataSource: dataSource,
		permission: permission,
	}
}

// GetContactFor returns the contact for address, or nil when there is
// none. Data source errors are returned and not cached.
func (r *CachingContactRepository) GetContactFor(
	ctx context.Context,
	address mail.EmailAddress,
) (*model.Contact, error) {
	if c, ok := r.cache.Get(address); ok {
		return c, nil
	}

	gen := r.currentGeneration()
	key := fmt.Sprintf("%d/%s", gen, address)

	// The query is shared by every caller of the flight, so one caller
	// giving up must not fail the others.
	queryCtx := context.WithoutCancel(ctx)
	ch := r.inflight.DoChan(key, func() (interface{}, error) {
		// Another caller may have stored the entry between our miss and
		// entering the group.
		if c, ok := r.cache.Get(address); ok {
			return c, nil
		}

		c, err := r.dataSource.GetContactFor(queryCtx, address)
		if err != nil {
			return nil, err
		}
		if r.storeIfCurrent(gen, address, c) {
			log.Debug().
				Str("address", address.String()).
				Bool("found", c != nil).
				Msg("cached contact lookup")
		}
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("looking up contact for %s: %w", address, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("looking up contact for %s: %w", address, res.Err)
		}
		c, _ := res.Val.(*model.Contact)
		return c, nil
	}
}

func (r *CachingContactRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// storeIfCurrent caches c unless ClearCache ran since gen was read.
func (r *CachingContactRepository) storeIfCurrent(
	gen uint64,
	address mail.EmailAddress,
	c *model.Contact,
) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return false
	}
	r.cache.Set(address, c)
	return true
}

// HasContactFor reports whether address resolves to a contact, reusing
// (and populating) the cached lookup.
func (r *CachingContactRepository) HasContactFor(
	ctx context.Context,
	address mail.EmailAddress,
) (bool, error) {
	c, err := r.GetContactFor(ctx, address)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// HasAnyContactFor reports whether at least one address resolves to a
// contact. It stops at the first match; an empty slice yields false.
func (r *CachingContactRepository) HasAnyContactFor(
	ctx context.Context,
	addresses []mail.EmailAddress,
) (bool, error) {
	for _, address := range addresses {
		ok, err := r.HasContactFor(ctx, address)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ClearCache drops every cached lookup.
func (r *CachingContactRepository) ClearCache() {
	r.mu.Lock()
	r.generation++
	r.cache.Clear()
	r.mu.Unlock()
	log.Debug().Msg("contact cache cleared")
}

// HasContactPermission asks the resolver on every call.
func (r *CachingContactRepository) HasContactPermission() bool {
	return r.permission.HasContactPermission()
}
