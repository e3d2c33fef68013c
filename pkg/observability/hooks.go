// Package observability lets a host program watch the editor, the preview
// compiler, the preview cache and the template API without this module
// importing a metrics or tracing library.
//
// Each area has a hook interface and a no-op implementation that is active
// until main registers something else:
//
//	observability.SetCompileHooks(promCompileHooks{})
//	observability.SetAPIHooks(tracingAPIHooks{tracer})
//
// Packages read the current hooks at the point of the event:
//
//	observability.Compile().OnCompileStart(ctx, token)
//	observability.Compile().OnCompileComplete(ctx, token, len(pdf), elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the editing session.
type EditorHooks interface {
	// OnMutation records a layout or variable mutation. err is non-nil when
	// the mutation was refused and the document left unchanged.
	OnMutation(ctx context.Context, op, targetID string, duration time.Duration, err error)
}

// =============================================================================
// Compile Hooks
// =============================================================================

// CompileHooks receives events from the preview compiler.
type CompileHooks interface {
	OnCompileStart(ctx context.Context, token uint64)
	OnCompileComplete(ctx context.Context, token uint64, size int, duration time.Duration, err error)

	// OnCompileSuperseded records a result discarded because a newer
	// request was issued.
	OnCompileSuperseded(ctx context.Context, token uint64)
}

// =============================================================================
// Preview Cache Hooks
// =============================================================================

// CacheHooks receives events from the compiled preview cache. key is the
// content hash of the markup and variables.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string, size int)
	OnCacheMiss(ctx context.Context, key string)

	// OnCacheStore records a compiled document written with the given ttl.
	OnCacheStore(ctx context.Context, key string, size int, ttl time.Duration)
}

// =============================================================================
// API Hooks
// =============================================================================

// Endpoint identifies a call to the storage or compile API.
type Endpoint struct {
	Method string
	Path   string
}

// APIHooks receives one event per HTTP attempt against the template API.
// Retried calls report every attempt.
type APIHooks interface {
	OnCall(ctx context.Context, e Endpoint)
	OnStatus(ctx context.Context, e Endpoint, status int, duration time.Duration)

	// OnFailure records an attempt that got no response at all.
	OnFailure(ctx context.Context, e Endpoint, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, string, time.Duration, error) {}

// NoopCompileHooks is a no-op implementation of CompileHooks.
type NoopCompileHooks struct{}

func (NoopCompileHooks) OnCompileStart(context.Context, uint64) {}
func (NoopCompileHooks) OnCompileComplete(context.Context, uint64, int, time.Duration, error) {
}
func (NoopCompileHooks) OnCompileSuperseded(context.Context, uint64) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string, int)                  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)                      {}
func (NoopCacheHooks) OnCacheStore(context.Context, string, int, time.Duration) {}

type NoopAPIHooks struct{}

func (NoopAPIHooks) OnCall(context.Context, Endpoint)                       {}
func (NoopAPIHooks) OnStatus(context.Context, Endpoint, int, time.Duration) {}
func (NoopAPIHooks) OnFailure(context.Context, Endpoint, error)             {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks  EditorHooks  = NoopEditorHooks{}
	compileHooks CompileHooks = NoopCompileHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	apiHooks     APIHooks     = NoopAPIHooks{}
	hooksMu      sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before any session is created.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetCompileHooks registers custom compile hooks.
// This should be called once at application startup before any preview is requested.
func SetCompileHooks(h CompileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		compileHooks = h
	}
}

// SetCacheHooks registers preview cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetAPIHooks registers template API hooks. Clients read the hooks per
// call, so hooks set after a client is built still apply.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Compile returns the registered compile hooks.
func Compile() CompileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return compileHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
}

// Reset restores the no-op hooks. Tests that register hooks call it in
// t.Cleanup.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	compileHooks = NoopCompileHooks{}
	cacheHooks = NoopCacheHooks{}
	apiHooks = NoopAPIHooks{}
}
