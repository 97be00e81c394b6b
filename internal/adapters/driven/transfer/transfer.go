// Package transfer holds what the feed fetchers share: writing a
// downloaded feed into place so readers never observe a partial file.
package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

// WriteAtomic copies r into a temporary file next to dst and renames it
// over dst once the copy has completed. The destination directory is
// created if absent. Failures are returned as *domain.TransferError.
func WriteAtomic(ctx context.Context, dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.TransferError{Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return &domain.TransferError{Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = tmp.Close()
		return &domain.TransferError{Op: "copy", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.TransferError{Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return &domain.TransferError{Op: "rename", Err: fmt.Errorf("%s: %w", dst, err)}
	}
	committed = true
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
