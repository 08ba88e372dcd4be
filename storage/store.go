// Package storage holds the backends stored files live in. The listing is always
// derived from the backend itself; there is no separate metadata index.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no stored file has the requested name.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for names that could escape the storage root.
	ErrInvalidName = errors.New("invalid filename")
	// ErrExists is returned by Put when name is already taken.
	ErrExists = errors.New("file already exists")
)

// Object is a named blob with the metadata the backend reports for it.
type Object struct {
	Name        string
	Size        int64
	CreatedAt   time.Time
	ContentType string
}

// Store is a flat namespace of immutable named blobs.
type Store interface {
	// List returns every stored object in backend enumeration order.
	List(ctx context.Context) ([]Object, error)
	// Put writes r in full under a name that must not exist yet and returns the number
	// of bytes written. A taken name yields ErrExists.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (int64, error)
	// Open returns the content of name. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
	// Stat reports metadata for name or ErrNotFound.
	Stat(ctx context.Context, name string) (Object, error)
	// Delete removes name or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Driver names the backend, e.g. "local".
	Driver() string
}

// ValidName rejects names that are empty, contain a path separator or NUL, or are a
// parent/current directory reference. Dots inside a single segment ("a..b") are fine.
func ValidName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidName
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrInvalidName
	}
	return nil
}
