package config

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Provider exposes the admin cache switches. Implementations must answer
// with the current value on every call; the cache store never memoizes the
// result, so an operator toggle takes effect without a restart.
type Provider interface {
	// CacheEnabled reports whether result caching is currently on.
	CacheEnabled(ctx context.Context) bool

	// CacheTTL returns the time-to-live applied to new cache entries.
	CacheTTL(ctx context.Context) time.Duration
}

// FileProvider re-reads a YAML settings file on every call. Read or parse
// failures fall back to the last defaults rather than disabling search.
type FileProvider struct {
	path string
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider reading the settings file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) load(ctx context.Context) CacheSettings {
	s, err := Load(p.path)
	if err != nil {
		slog.Warn("admin settings unreadable, using defaults",
			slog.String("path", p.path),
			slog.String("error", err.Error()))
		return DefaultSettings().Cache
	}
	return s.Cache
}

// CacheEnabled reads the current enabled flag from the file.
func (p *FileProvider) CacheEnabled(ctx context.Context) bool {
	return p.load(ctx).Enabled
}

// CacheTTL reads the current TTL from the file.
func (p *FileProvider) CacheTTL(ctx context.Context) time.Duration {
	return time.Duration(p.load(ctx).TTLSeconds) * time.Second
}

// StaticProvider holds the switches in process memory. Used by tests and by
// deployments that manage settings through their own admin surface.
type StaticProvider struct {
	enabled    atomic.Bool
	ttlSeconds atomic.Int64
}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider with the given initial values.
func NewStaticProvider(enabled bool, ttl time.Duration) *StaticProvider {
	p := &StaticProvider{}
	p.enabled.Store(enabled)
	p.ttlSeconds.Store(int64(ttl / time.Second))
	return p
}

// CacheEnabled reports the current enabled flag.
func (p *StaticProvider) CacheEnabled(ctx context.Context) bool {
	return p.enabled.Load()
}

// CacheTTL reports the current TTL.
func (p *StaticProvider) CacheTTL(ctx context.Context) time.Duration {
	return time.Duration(p.ttlSeconds.Load()) * time.Second
}

// SetEnabled toggles caching. Takes effect on the next cache call.
func (p *StaticProvider) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// SetTTL updates the TTL applied to new entries.
func (p *StaticProvider) SetTTL(ttl time.Duration) {
	p.ttlSeconds.Store(int64(ttl / time.Second))
}
