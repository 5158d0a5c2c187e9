// Package imageloader resolves opaque image reference strings (remote URL,
// base64 data URI, bundle name or file path) into decoded bitmaps, with a
// byte-bounded LRU cache and concurrent order-preserving batch resolution.
package imageloader

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// sourceKind classifies an image reference, checked in order: data URI,
// remote URL, local bundle name falling back to a filesystem path.
type sourceKind int

const (
	sourceBase64 sourceKind = iota
	sourceRemote
	sourceLocal
)

func classify(ref string) sourceKind {
	switch {
	case strings.HasPrefix(ref, "data:image"):
		return sourceBase64
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return sourceRemote
	default:
		return sourceLocal
	}
}

// Loader fetches and decodes image references. Resolution failures are
// non-fatal: they are logged and reported as a missing entry, never as an
// error, so rendering can proceed without the image.
type Loader struct {
	cache  Cache
	client *http.Client
	log    zerolog.Logger

	mu     sync.RWMutex
	bundle map[string]image.Image
}

// NewClient builds the outbound HTTP client used for remote fetches.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// New creates a loader backed by the given cache and HTTP client.
func New(cache Cache, client *http.Client, log zerolog.Logger) *Loader {
	if client == nil {
		client = NewClient(0)
	}
	return &Loader{
		cache:  cache,
		client: client,
		log:    log,
		bundle: make(map[string]image.Image),
	}
}

// RegisterBundleImage makes a named local resource resolvable. The host
// registers its bundled assets at startup.
func (l *Loader) RegisterBundleImage(name string, img image.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bundle[name] = img
}

// Resolve returns the decoded bitmap for ref, consulting the cache first.
// The second return is false when the reference could not be resolved.
func (l *Loader) Resolve(ctx context.Context, ref string) (image.Image, bool) {
	if ref == "" {
		return nil, false
	}
	if l.cache != nil {
		if img, ok := l.cache.Get(ref); ok {
			return img, true
		}
	}

	var (
		img image.Image
		err error
	)
	switch classify(ref) {
	case sourceBase64:
		img, err = l.decodeDataURI(ref)
	case sourceRemote:
		img, err = l.fetchRemote(ctx, ref)
	case sourceLocal:
		img, err = l.loadLocal(ref)
	}
	if err != nil {
		l.log.Warn().Err(err).Str("ref", truncateRef(ref)).Msg("image resolution failed")
		return nil, false
	}

	if l.cache != nil {
		l.cache.Add(ref, img)
	}
	return img, true
}

// ResolveMany resolves all refs concurrently and returns results aligned to
// the input order regardless of completion order. Failed entries are nil.
// Cancelling ctx abandons still-pending fetches; their slots stay nil.
func (l *Loader) ResolveMany(ctx context.Context, refs []string) []image.Image {
	results := make([]image.Image, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			if img, ok := l.Resolve(ctx, ref); ok {
				results[i] = img
			}
		}(i, ref)
	}
	wg.Wait()

	return results
}

func (l *Loader) decodeDataURI(ref string) (image.Image, error) {
	_, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, fmt.Errorf("data URI without payload")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding inline image: %w", err)
	}
	return img, nil
}

func (l *Loader) fetchRemote(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding fetched image: %w", err)
	}
	return img, nil
}

func (l *Loader) loadLocal(ref string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.bundle[ref]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	f, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("no bundle resource and no file at %q: %w", ref, err)
	}
	defer f.Close()

	img, _, err = image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding file %q: %w", ref, err)
	}
	return img, nil
}

// truncateRef keeps log lines readable when the ref is an inline data URI.
func truncateRef(ref string) string {
	if len(ref) > 96 {
		return ref[:96] + "..."
	}
	return ref
}
