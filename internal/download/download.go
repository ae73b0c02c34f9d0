// Package download delivers export artifacts. Every delivery goes through a
// transient object URL: the artifact is published under a URL, the URL is
// resolved and handed to a destination, and the URL is revoked afterwards.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrUnknownURL = errors.New("download: unknown object URL")

// Artifact is a finished export ready for delivery.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Destination receives an artifact, e.g. a file on disk or an HTTP
// response.
type Destination interface {
	Deliver(ctx context.Context, a Artifact) error
}

// DestinationFunc adapts a function to Destination.
type DestinationFunc func(ctx context.Context, a Artifact) error

func (f DestinationFunc) Deliver(ctx context.Context, a Artifact) error { return f(ctx, a) }

// Registry issues object URLs for artifacts.
type Registry interface {
	Create(a Artifact) (string, error)
	Resolve(url string) (Artifact, error)
	Revoke(url string) error
}

// MemoryRegistry keeps artifacts in memory under blob: URLs.
type MemoryRegistry struct {
	mu      sync.Mutex
	objects map[string]Artifact
	created int
	revoked int
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{objects: map[string]Artifact{}}
}

func (r *MemoryRegistry) Create(a Artifact) (string, error) {
	url := "blob:neoncv/" + uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[url] = a
	r.created++
	return url, nil
}

func (r *MemoryRegistry) Resolve(url string) (Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.objects[url]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrUnknownURL, url)
	}
	return a, nil
}

func (r *MemoryRegistry) Revoke(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objects[url]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownURL, url)
	}
	delete(r.objects, url)
	r.revoked++
	return nil
}

// Live is the number of URLs created and not yet revoked.
func (r *MemoryRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// Stats returns the total created and revoked counts.
func (r *MemoryRegistry) Stats() (created, revoked int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, r.revoked
}

// Trigger publishes a under a fresh object URL, hands it to dst and then
// revokes the URL. The revoke runs exactly once, after delivery, whether
// delivery succeeded or not.
func Trigger(ctx context.Context, reg Registry, a Artifact, dst Destination) (err error) {
	if dst == nil {
		return fmt.Errorf("download: nil destination")
	}
	url, err := reg.Create(a)
	if err != nil {
		return fmt.Errorf("download: create object URL: %w", err)
	}
	defer func() {
		if rerr := reg.Revoke(url); rerr != nil {
			slog.Warn("download: revoke failed", "url", url, "error", rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	resolved, err := reg.Resolve(url)
	if err != nil {
		return err
	}
	if err := dst.Deliver(ctx, resolved); err != nil {
		return fmt.Errorf("download: deliver %s: %w", resolved.Filename, err)
	}
	return nil
}

// WithExtension returns name with ext appended unless it already ends in
// it. An empty name becomes "cv".
func WithExtension(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "cv"
	}
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}
