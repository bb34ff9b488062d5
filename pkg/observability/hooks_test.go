package observability

import (
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	g := NoopGraphHooks{}
	g.OnTagCreated("color")
	g.OnTagDeleted("color")
	g.OnConnect("color", "red", "TO_TAG_CHILD")
	g.OnDisconnect("color", "red")
	g.OnSearch("entities", 3, time.Second)

	s := NoopStoreHooks{}
	s.OnSave("file", "graph", 1024, time.Second)
	s.OnLoad("file", "graph", 1024, time.Second)
	s.OnError("file", "save", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := GraphEvents().(NoopGraphHooks); !ok {
		t.Error("GraphEvents() should return NoopGraphHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	// Set custom hooks
	customGraph := &testGraphHooks{}
	SetGraphHooks(customGraph)
	if GraphEvents() != customGraph {
		t.Error("SetGraphHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := GraphEvents().(NoopGraphHooks); !ok {
		t.Error("Reset() should restore NoopGraphHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testGraphHooks{}
	SetGraphHooks(custom)

	// Setting nil should be ignored
	SetGraphHooks(nil)

	if GraphEvents() != custom {
		t.Error("SetGraphHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testGraphHooks struct{ NoopGraphHooks }
type testStoreHooks struct{ NoopStoreHooks }
