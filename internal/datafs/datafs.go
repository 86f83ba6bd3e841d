// Package datafs exposes the host user-data tree: directory browsing, uploads, and byte fetches.
package datafs

import (
	"context"
	"errors"
)

var ErrOutsideRoot = errors.New("path escapes data root")

// Listing is the result of browsing one directory. Files and Dirs hold data paths.
type Listing struct {
	Files []string
	Dirs  []string
}

type Browser interface {
	Browse(ctx context.Context, dir string) (Listing, error)
}

type Uploader interface {
	Upload(ctx context.Context, dir, name string, data []byte, overwrite bool) error
}

type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FS is the full capability set of a data tree.
type FS interface {
	Browser
	Uploader
	Fetcher
	Exists(ctx context.Context, path string) (bool, error)
}
