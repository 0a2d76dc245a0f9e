// Package fetcher resolves sales export sources: local paths are used as-is,
// http(s):// and ftp:// URLs are downloaded, and ZIP archives are unpacked.
package fetcher

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/ingest"
)

// Fetcher downloads a remote resource.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures NewResolver.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	MaxBytes   int64 // download ceiling; 0 uses ingest.DefaultMaxBytes

	// BreakerThreshold is the number of consecutive failed downloads from a
	// host before further downloads from it are refused. Default: 5.
	BreakerThreshold int
	// BreakerCooldown is how long a host stays refused. Default: 30s.
	BreakerCooldown time.Duration
}

// Resolver turns a source string into a local file the ingest package can read.
type Resolver struct {
	fetchers map[string]Fetcher
	maxBytes int64
	breaker  *hostBreaker
}

// NewResolver creates a Resolver with HTTP(S) and FTP fetchers.
func NewResolver(opts Options) *Resolver {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = ingest.DefaultMaxBytes
	}
	h := NewHTTPFetcher(HTTPOptions{
		UserAgent:  opts.UserAgent,
		Timeout:    opts.Timeout,
		MaxRetries: opts.MaxRetries,
	})
	return &Resolver{
		fetchers: map[string]Fetcher{
			"http":  h,
			"https": h,
			"ftp":   NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
		},
		maxBytes: opts.MaxBytes,
		breaker:  newHostBreaker(opts.BreakerThreshold, opts.BreakerCooldown),
	}
}

// Register sets the fetcher used for a URL scheme.
func (r *Resolver) Register(scheme string, f Fetcher) {
	r.fetchers[strings.ToLower(scheme)] = f
}

// IsRemote reports whether src is a URL with a scheme the default resolver handles.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// Resolve returns a local path for src. Remote files are downloaded into dir
// under their original file name so the extension still selects the parser.
// A .zip source is unpacked to the single sales file it contains.
func (r *Resolver) Resolve(ctx context.Context, src, dir string) (string, error) {
	local := src
	if u, err := url.Parse(src); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		f, ok := r.fetchers[strings.ToLower(u.Scheme)]
		if !ok {
			return "", eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
		}
		if err := r.breaker.allow(u.Host); err != nil {
			return "", err
		}
		local, err = r.download(ctx, f, src, filepath.Join(dir, fileName(u)))
		if ctx.Err() == nil {
			r.breaker.record(u.Host, transportErr(err))
		} else {
			r.breaker.release(u.Host)
		}
		if err != nil {
			return "", err
		}
	}

	if strings.EqualFold(filepath.Ext(local), ".zip") {
		return ExtractSalesFile(local, dir, r.maxBytes)
	}
	return local, nil
}

func (r *Resolver) download(ctx context.Context, f Fetcher, src, dest string) (string, error) {
	start := time.Now()
	body, err := f.Download(ctx, src)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", src)
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create file")
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, io.LimitReader(body, r.maxBytes+1))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: write file")
	}
	if n > r.maxBytes {
		return "", eris.Wrapf(ingest.ErrTooLarge, "fetcher: %s exceeds %d bytes", src, r.maxBytes)
	}

	zap.L().Info("fetcher: downloaded source",
		zap.String("url", src),
		zap.String("path", dest),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return dest, nil
}

// transportErr drops errors that say nothing about the host's health.
func transportErr(err error) error {
	if errors.Is(err, ingest.ErrTooLarge) {
		return nil
	}
	return err
}

// fileName is the last path element of u, or "download" when the URL has none.
func fileName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
