package ecs

import "testing"

func TestEntityPool_ZeroIDNeverIssued(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	if id.IsZero() {
		t.Fatal("first entity must not be the zero ID")
	}
	if p.Alive(0) {
		t.Error("zero ID must never be alive")
	}
}

func TestEntityPool_StaleIDAfterReuse(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Destroy(a)
	b := p.Create()
	if a.Index() != b.Index() {
		t.Fatalf("expected slot reuse, got %d and %d", a.Index(), b.Index())
	}
	if p.Alive(a) {
		t.Error("stale ID reported alive")
	}
	if !p.Alive(b) {
		t.Error("reissued ID not alive")
	}
	p.Destroy(a) // stale: must not free b's slot
	if !p.Alive(b) || p.Live() != 1 {
		t.Errorf("stale destroy affected live entity: alive=%v live=%d", p.Alive(b), p.Live())
	}
}

func TestWorld_FlushRemovesComponentsOnce(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[int]()
	w.Registry().Register(store)

	id := w.CreateEntity()
	v := 7
	store.Set(id, &v)

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	if got := w.PendingDestruction(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
	flushed := w.FlushDestroyQueue()
	if len(flushed) != 1 || flushed[0] != id {
		t.Fatalf("flushed = %v, want [%d]", flushed, id)
	}
	if store.Has(id) {
		t.Error("component survived flush")
	}
	if w.Alive(id) {
		t.Error("entity alive after flush")
	}
}

func TestPtrComponentStore_EachAscending(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[string]()
	var ids []EntityID
	for i := 0; i < 5; i++ {
		id := w.CreateEntity()
		s := "x"
		store.Set(id, &s)
		ids = append(ids, id)
	}
	var seen []EntityID
	store.Each(func(id EntityID, _ *string) { seen = append(seen, id) })
	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Fatalf("not ascending: %v", seen)
		}
	}
	if len(seen) != len(ids) {
		t.Fatalf("visited %d, want %d", len(seen), len(ids))
	}
}
