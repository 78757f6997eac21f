// Package permission decides whether the address book may be read.
package permission

import (
	"errors"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// ErrDenied is returned by operations that need to read the address
// book when permission has not been granted.
var ErrDenied = errors.New("no permission to access contacts")

// FileResolver grants contact permission when the user has consented
// and the address book file is readable by this process. Both are
// checked on every call so revoking access takes effect immediately.
type FileResolver struct {
	path    string
	consent atomic.Bool
}

// NewFileResolver returns a resolver for the address book at path.
func NewFileResolver(path string, consent bool) *FileResolver {
	r := &FileResolver{path: path}
	r.consent.Store(consent)
	return r
}

// SetConsent records the user's decision.
func (r *FileResolver) SetConsent(granted bool) {
	r.consent.Store(granted)
}

// HasContactPermission implements contact.PermissionResolver.
func (r *FileResolver) HasContactPermission() bool {
	if !r.consent.Load() {
		return false
	}
	if r.path == ":memory:" {
		return true
	}

	info, err := os.Stat(r.path)
	if err != nil {
		log.Debug().Err(err).Str("path", r.path).Msg("address book not accessible")
		return false
	}
	if info.IsDir() {
		return false
	}
	if err := canRead(r.path); err != nil {
		log.Debug().Err(err).Str("path", r.path).Msg("address book not readable")
		return false
	}
	return true
}

// Static is a fixed answer, useful when permission is not a concern.
type Static bool

func (s Static) HasContactPermission() bool { return bool(s) }
