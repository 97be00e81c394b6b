package driven

import (
	"context"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// FetchRequest describes one feed download.
type FetchRequest struct {
	// RemotePath is the source path: a server path for FTP, a file
	// path for local drops.
	RemotePath string

	// LocalPath is where the feed is written. An existing file is
	// replaced only once the download has completed.
	LocalPath string
}

// FeedFetcher downloads the feed file.
type FeedFetcher interface {
	// Fetch writes the feed to req.LocalPath.
	// Failures are returned as *domain.TransferError.
	Fetch(ctx context.Context, req FetchRequest) error
}

// FeedDecoder opens a downloaded feed as a record stream.
type FeedDecoder interface {
	// Open starts decoding the file at path. The header row is consumed.
	// Failures are returned as *domain.DecodeError.
	Open(ctx context.Context, path string) (RecordStream, error)
}

// RecordStream yields feed records one at a time.
// Streams are forward-only and cannot be restarted.
type RecordStream interface {
	// Next returns the next record, or io.EOF at the end of the stream.
	// Malformed input is returned as *domain.DecodeError.
	Next() (domain.FeedRecord, error)

	// Close releases the underlying file.
	Close() error
}
