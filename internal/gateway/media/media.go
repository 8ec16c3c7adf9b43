// Package media fetches remote files for document sends. Downloads stream to
// a temp file under a hard size cap so a hostile URL can neither exhaust
// memory nor fill the disk, and the first 512 bytes are captured for MIME
// sniffing. Callers must invoke Cleanup on every returned File.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
)

var (
	// ErrTooLarge reports a remote file over the configured byte cap.
	ErrTooLarge = errors.New("media: file exceeds size limit")

	// ErrTooManyRedirects reports a redirect chain past the cap.
	ErrTooManyRedirects = errors.New("media: too many redirects")
)

const (
	maxRedirects = 5
	headSize     = 512
)

// File is a fetched artifact parked in a temp file.
type File struct {
	Path string
	Size int64
	Head []byte // first bytes, for MIME sniffing
	MIME string
}

// Cleanup removes the temp file. Safe to call more than once.
func (f *File) Cleanup() {
	if f.Path != "" {
		_ = os.Remove(f.Path)
		f.Path = ""
	}
}

// Bytes reads the whole artifact back. The size cap at fetch time keeps this
// bounded.
func (f *File) Bytes() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("media: read temp: %w", err)
	}
	return data, nil
}

// Fetch downloads rawURL into a temp file, enforcing maxBytes. The context
// carries the deadline; callers wrap it with their fetch timeout.
func Fetch(ctx context.Context, rawURL string, maxBytes int64) (*File, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("media: invalid url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}

	client := &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media: unexpected status %d fetching %q", resp.StatusCode, rawURL)
	}

	tmp, err := os.CreateTemp("", "chatbridge-media-*")
	if err != nil {
		return nil, fmt.Errorf("media: temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Read one byte past the cap so an oversize body is distinguishable from
	// one that is exactly at it.
	head := &headCapture{}
	limited := &io.LimitedReader{R: resp.Body, N: maxBytes + 1}
	written, err := io.Copy(tmp, io.TeeReader(limited, head))
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("media: download: %w", err)
	}
	if written > maxBytes {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w (%d byte cap)", ErrTooLarge, maxBytes)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("media: close temp: %w", err)
	}

	return &File{
		Path: tmpPath,
		Size: written,
		Head: head.b,
		MIME: DetectMIME(head.b),
	}, nil
}

// FilenameFromURL extracts a usable filename from the URL path, or "" when
// the path has none.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return base
}

// headCapture keeps the first headSize bytes written through it.
type headCapture struct{ b []byte }

func (h *headCapture) Write(p []byte) (int, error) {
	if len(h.b) < headSize {
		need := headSize - len(h.b)
		if need > len(p) {
			need = len(p)
		}
		h.b = append(h.b, p[:need]...)
	}
	return len(p), nil
}
