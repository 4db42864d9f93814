// Package fetcher opens dataset sources over HTTP, FTP or the local
// filesystem and streams their CSV rows.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the source and returns its body. The caller closes it.
	Download(ctx context.Context, source string) (io.ReadCloser, error)
}

// Options configures the fetchers built by NewRouter.
type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// Router dispatches a source to the fetcher matching its scheme:
// http and https go to HTTP, ftp to FTP, everything else is read from disk.
type Router struct {
	HTTP Fetcher
	FTP  Fetcher
	File Fetcher
}

// NewRouter builds a Router with the default fetcher for every scheme.
func NewRouter(opts Options) *Router {
	return &Router{
		HTTP: NewHTTPFetcher(HTTPOptions{UserAgent: opts.UserAgent, Timeout: opts.Timeout}),
		FTP:  NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
		File: FileFetcher{},
	}
}

// Download implements Fetcher.
func (r *Router) Download(ctx context.Context, source string) (io.ReadCloser, error) {
	kind, err := schemeOf(source)
	if err != nil {
		return nil, err
	}

	var f Fetcher
	switch kind {
	case "http", "https":
		f = r.HTTP
	case "ftp":
		f = r.FTP
	default:
		f = r.File
	}
	if f == nil {
		return nil, eris.Errorf("fetcher: no fetcher configured for %q sources", kind)
	}
	return f.Download(ctx, source)
}

// schemeOf returns the lower-cased URL scheme of source, or "file" for plain paths.
func schemeOf(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", eris.New("fetcher: empty source")
	}
	if !strings.Contains(source, "://") {
		return "file", nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse source")
	}
	return strings.ToLower(u.Scheme), nil
}
