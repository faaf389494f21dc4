package analysis

import (
	"context"
	"testing"

	"github.com/ladderflow/ladderflow/pkg/container"
	"github.com/ladderflow/ladderflow/pkg/instr"
)

func storedFixture(t *testing.T) *Context {
	t.Helper()
	records := []container.Record{
		{NetworkID: 1, Payload: instr.EncodeRecord([]instr.Instruction{
			instr.Inst(instr.OpEND),
		})},
	}
	a := New(Options{})
	actx, err := a.Run(context.Background(), container.WriteBlob(records, false))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return actx
}

// TestStore_PutGet verifies round-trip by pass id
func TestStore_PutGet(t *testing.T) {
	store := NewStore(4)
	actx := storedFixture(t)
	store.Put(actx)

	got, ok := store.Get(actx.PassID().String())
	if !ok || got != actx {
		t.Fatal("Expected Get to return the stored context")
	}
	if _, ok := store.Get("not-a-uuid"); ok {
		t.Error("Expected malformed ids to miss")
	}
}

// TestStore_Eviction verifies the oldest context leaves when capacity is
// exceeded
func TestStore_Eviction(t *testing.T) {
	store := NewStore(2)
	first := storedFixture(t)
	second := storedFixture(t)
	third := storedFixture(t)
	store.Put(first)
	store.Put(second)
	store.Put(third)

	if store.Len() != 2 {
		t.Fatalf("Expected 2 held contexts, got %d", store.Len())
	}
	if _, ok := store.Get(first.PassID().String()); ok {
		t.Error("Expected the oldest context to be evicted")
	}
	latest, ok := store.Latest()
	if !ok || latest != third {
		t.Error("Expected Latest to return the newest context")
	}
}

// TestStore_LatestEmpty verifies Latest on an empty store
func TestStore_LatestEmpty(t *testing.T) {
	store := NewStore(2)
	if _, ok := store.Latest(); ok {
		t.Error("Expected no latest context in an empty store")
	}
}
