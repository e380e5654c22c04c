// Package schedule reads pretalx schedule exports from disk or over HTTP.
package schedule

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Loader resolves a schedule source, which is either a local file or an
// http(s) URL. Fetched schedules can optionally be cached on disk.
type Loader struct {
	httpClient *http.Client
	userAgent  string
	cacheDir   string
	cache      bool
}

type LoaderOption func(*Loader)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = c
	}
}

func WithUserAgent(ua string) LoaderOption {
	return func(l *Loader) {
		l.userAgent = ua
	}
}

// WithCache stores every fetched schedule as JSON within dir.
func WithCache(dir string) LoaderOption {
	return func(l *Loader) {
		l.cache = true
		l.cacheDir = dir
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "talkmeta",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the parsed schedule from source.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	if _, err := os.Stat(source); err == nil {
		return l.loadFile(source)
	}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return nil, errors.Errorf("Schedule %s is neither a file nor an http(s) URL", source)
	}
	return l.fetch(ctx, source)
}

func (l *Loader) loadFile(p string) (*Document, error) {
	log.Debug().Str("schedule", p).Msg("Reading schedule file")
	fp, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open schedule %s", p)
	}
	defer fp.Close()
	doc, err := Decode(fp)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse schedule %s", p)
	}
	return doc, nil
}

func (l *Loader) fetch(ctx context.Context, source string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create request for %s", source)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", l.userAgent)

	log.Info().Str("url", source).Msg("Fetching schedule")
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to fetch schedule %s", source)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read schedule %s", source)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Unexpected status code %d fetching schedule %s", resp.StatusCode, source)
	}

	doc, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse schedule %s", source)
	}

	if l.cache {
		p, err := l.writeCache(source, body)
		if err != nil {
			return nil, err
		}
		log.Info().Str("url", source).Str("path", p).Msg("Cached schedule")
	}
	return doc, nil
}

func (l *Loader) writeCache(source string, body []byte) (string, error) {
	name, err := CacheName(source)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return "", errors.Wrapf(err, "Failed to create cache folder %s", l.cacheDir)
	}
	p := filepath.Join(l.cacheDir, name)
	if err := os.WriteFile(p, body, 0644); err != nil {
		return "", errors.Wrapf(err, "Failed to cache schedule in %s", p)
	}
	return p, nil
}

// CacheName derives the cache file name from the second-to-last segment of
// a schedule URL, e.g. .../foss4g-europe-2024/schedule.json is cached as
// foss4g-europe-2024.json. The host counts as a segment and the segment is
// used as it appears in the URL.
func CacheName(source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to parse schedule URL %s", source)
	}
	var parts []string
	if u.Host != "" {
		parts = append(parts, u.Host)
	}
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) < 2 {
		return "", errors.Errorf("Schedule URL %s has too few path segments to derive a cache name", source)
	}
	name := parts[len(parts)-2]
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errors.Errorf("Schedule URL %s yields the invalid cache name %q", source, name)
	}
	return fmt.Sprintf("%s.json", name), nil
}
