package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()
	ep := Endpoint{Method: "POST", Path: "/api/templates/preview"}

	NoopEditorHooks{}.OnMutation(ctx, "wrap", "comp-1", time.Millisecond, nil)

	NoopCompileHooks{}.OnCompileStart(ctx, 1)
	NoopCompileHooks{}.OnCompileComplete(ctx, 1, 2048, time.Second, nil)
	NoopCompileHooks{}.OnCompileSuperseded(ctx, 1)

	NoopCacheHooks{}.OnCacheHit(ctx, "abc", 1024)
	NoopCacheHooks{}.OnCacheMiss(ctx, "abc")
	NoopCacheHooks{}.OnCacheStore(ctx, "abc", 1024, time.Hour)

	NoopAPIHooks{}.OnCall(ctx, ep)
	NoopAPIHooks{}.OnStatus(ctx, ep, 200, time.Second)
	NoopAPIHooks{}.OnFailure(ctx, ep, errors.New("connection refused"))
}

func TestRegistryDefaultsAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Editor() default is not a no-op")
	}
	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Compile() default is not a no-op")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() default is not a no-op")
	}
	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("API() default is not a no-op")
	}

	editor := &testEditorHooks{}
	compile := &testCompileHooks{}
	cache := &testCacheHooks{}
	api := &recordingAPIHooks{}
	SetEditorHooks(editor)
	SetCompileHooks(compile)
	SetCacheHooks(cache)
	SetAPIHooks(api)

	if Editor() != editor || Compile() != compile || Cache() != cache || API() != api {
		t.Fatal("registered hooks not returned")
	}

	Reset()
	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("Reset() left API hooks registered")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() left cache hooks registered")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testCompileHooks{}
	SetCompileHooks(custom)
	SetCompileHooks(nil)
	if Compile() != custom {
		t.Error("SetCompileHooks(nil) replaced the registered hooks")
	}

	api := &recordingAPIHooks{}
	SetAPIHooks(api)
	SetAPIHooks(nil)
	if API() != api {
		t.Error("SetAPIHooks(nil) replaced the registered hooks")
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	rec := &recordingAPIHooks{}
	SetAPIHooks(rec)

	ctx := context.Background()
	ep := Endpoint{Method: "GET", Path: "/api/templates"}
	API().OnCall(ctx, ep)
	API().OnStatus(ctx, ep, 503, time.Millisecond)
	API().OnCall(ctx, ep)
	API().OnStatus(ctx, ep, 200, time.Millisecond)

	if rec.calls != 2 {
		t.Errorf("calls = %d, want 2", rec.calls)
	}
	if want := []int{503, 200}; len(rec.statuses) != 2 || rec.statuses[0] != want[0] || rec.statuses[1] != want[1] {
		t.Errorf("statuses = %v, want %v", rec.statuses, want)
	}
}

type testEditorHooks struct{ NoopEditorHooks }
type testCompileHooks struct{ NoopCompileHooks }
type testCacheHooks struct{ NoopCacheHooks }

type recordingAPIHooks struct {
	NoopAPIHooks
	calls    int
	statuses []int
}

func (r *recordingAPIHooks) OnCall(context.Context, Endpoint) { r.calls++ }

func (r *recordingAPIHooks) OnStatus(_ context.Context, _ Endpoint, status int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
}
