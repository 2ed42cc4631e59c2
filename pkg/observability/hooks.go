// Package observability lets a host process watch bakes without tying the
// library to a metrics backend.
//
// Hooks are registered once at startup and called by the pipeline, the cache
// layer and the HTTP server. The defaults do nothing.
//
//	func main() {
//	    observability.SetBakeHooks(&promBakeHooks{})
//	    // ... run application
//	}
//
// Libraries emit events through the registry:
//
//	observability.Bake().OnBakeStart(ctx, "tree.png", len(angles))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Bake Hooks
// =============================================================================

// BakeHooks receives events from the bake pipeline.
type BakeHooks interface {
	OnBakeStart(ctx context.Context, source string, angles int)
	OnBakeComplete(ctx context.Context, source string, angles int, duration time.Duration, err error)

	// OnAngleComplete fires once per angle, from worker goroutines.
	OnAngleComplete(ctx context.Context, angle int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBakeHooks is a no-op implementation of BakeHooks.
type NoopBakeHooks struct{}

func (NoopBakeHooks) OnBakeStart(context.Context, string, int)                          {}
func (NoopBakeHooks) OnBakeComplete(context.Context, string, int, time.Duration, error) {}
func (NoopBakeHooks) OnAngleComplete(context.Context, int, time.Duration, error)        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	bakeHooks  BakeHooks  = NoopBakeHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetBakeHooks registers bake hooks. Nil is ignored.
func SetBakeHooks(h BakeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		bakeHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Bake returns the registered bake hooks.
func Bake() BakeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return bakeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Tests use it between cases.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	bakeHooks = NoopBakeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
