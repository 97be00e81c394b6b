// Package local fetches the feed from a file on the local filesystem,
// for manual runs and drop-directory watching.
package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/custodia-labs/stocksync/internal/adapters/driven/transfer"
	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.FeedFetcher = (*Fetcher)(nil)

// Fetcher copies a local drop file into the feed location.
type Fetcher struct{}

// NewFetcher creates a local fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch copies req.RemotePath to req.LocalPath. Copying a file onto
// itself is a no-op.
func (f *Fetcher) Fetch(ctx context.Context, req driven.FetchRequest) error {
	if req.RemotePath == "" {
		return &domain.TransferError{Op: "open", Err: errors.New("no feed file given")}
	}

	src, err := filepath.Abs(req.RemotePath)
	if err != nil {
		return &domain.TransferError{Op: "open", Err: err}
	}
	dst, err := filepath.Abs(req.LocalPath)
	if err != nil {
		return &domain.TransferError{Op: "open", Err: err}
	}
	if src == dst {
		if _, err := os.Stat(src); err != nil {
			return &domain.TransferError{Op: "open", Err: err}
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return &domain.TransferError{Op: "open", Err: err}
	}
	defer in.Close()

	return transfer.WriteAtomic(ctx, dst, in)
}
