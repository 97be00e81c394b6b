// Package ftp fetches the inventory feed from the supplier's FTP server.
package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/custodia-labs/stocksync/internal/adapters/driven/transfer"
	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.FeedFetcher = (*Fetcher)(nil)

// Config holds the FTP connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// ConfigFromSettings extracts the connection settings.
func ConfigFromSettings(s domain.FTPSettings) Config {
	return Config{
		Host:     s.Host,
		Port:     s.Port,
		User:     s.User,
		Password: s.Password,
		Timeout:  s.Timeout,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = 21
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// conn is the subset of *ftp.ServerConn used by the fetcher.
type conn interface {
	Login(user, password string) error
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

// dialFunc opens a control connection.
type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (conn, error)

// Fetcher downloads the feed over plain FTP.
type Fetcher struct {
	cfg  Config
	dial dialFunc
}

// NewFetcher creates a fetcher for the configured server.
func NewFetcher(cfg Config) *Fetcher {
	return &Fetcher{cfg: cfg, dial: dialServer}
}

// Fetch logs in, retrieves req.RemotePath and writes it to req.LocalPath.
// The connection is always closed with QUIT, also on failure.
func (f *Fetcher) Fetch(ctx context.Context, req driven.FetchRequest) (err error) {
	if f.cfg.Host == "" {
		return &domain.TransferError{Op: "dial", Err: errors.New("ftp host not configured")}
	}

	addr := f.cfg.Addr()
	logger.Debug("Connecting to ftp://%s", addr)

	c, err := f.dial(ctx, addr, f.cfg.Timeout)
	if err != nil {
		return &domain.TransferError{Op: "dial", Err: err}
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil {
			logger.Debug("ftp quit: %v", quitErr)
		}
	}()

	if err := c.Login(f.cfg.User, f.cfg.Password); err != nil {
		return &domain.TransferError{Op: "login", Err: err}
	}

	body, err := c.Retr(req.RemotePath)
	if err != nil {
		return &domain.TransferError{Op: "retr", Err: fmt.Errorf("%s: %w", req.RemotePath, err)}
	}

	writeErr := transfer.WriteAtomic(ctx, req.LocalPath, body)
	// The transfer must be closed before the control connection is reused
	closeErr := body.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return &domain.TransferError{Op: "retr", Err: closeErr}
	}

	logger.Debug("Downloaded %s to %s", req.RemotePath, req.LocalPath)
	return nil
}

// serverConn adapts *ftp.ServerConn to conn.
type serverConn struct {
	*ftp.ServerConn
}

func (s serverConn) Retr(path string) (io.ReadCloser, error) {
	resp, err := s.ServerConn.Retr(path)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func dialServer(ctx context.Context, addr string, timeout time.Duration) (conn, error) {
	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(timeout))
	}
	c, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return serverConn{ServerConn: c}, nil
}
