// Package file loads messages stored as .eml files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nhle/mailcontacts/internal/source"
)

// Loader implements source.Loader for messages on disk.
type Loader struct{}

// NewLoader returns a file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the header of the message at ref.Path.
func (l *Loader) Load(_ context.Context, ref source.MessageRef) (*source.Message, error) {
	if ref.Path == "" {
		return nil, fmt.Errorf("loading message: empty path")
	}

	f, err := os.Open(ref.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ref.Path, source.ErrMessageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening message %s: %w", ref.Path, err)
	}
	defer f.Close()

	h, err := source.ParseHeader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref.Path, err)
	}

	return &source.Message{Ref: ref, Header: h}, nil
}
