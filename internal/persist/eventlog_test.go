package persist

import (
	"context"
	"testing"

	"github.com/voidbreak/hull/internal/core/event"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

func sampleRecord(runID string, tick uint64) SplitRecord {
	return NewSplitRecord(runID, event.StructureSplit{
		Tick:       tick,
		Parent:     7,
		ParentName: "alpha",
		Destroyed:  42,
		CoreSize:   5,
		Fragments: []event.FragmentInfo{{
			ID:              9,
			Blocks:          []world.BlockID{40, 41},
			Velocity:        mathutil.Vec2{2, -0.5},
			AngularVelocity: 0.25,
			Mass:            3,
			HP:              150,
		}},
	})
}

func TestSplitLog_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l, err := NewSplitLog(dir, "run1")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := l.WriteSplits(ctx, []SplitRecord{sampleRecord("run1", 10)}); err != nil {
		t.Fatal(err)
	}
	if err := l.WriteSplits(ctx, []SplitRecord{sampleRecord("run1", 20), sampleRecord("run1", 30)}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSplitLog(SplitLogPath(dir, "run1"))
	if err != nil {
		t.Fatalf("ReadSplitLog: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("records = %d, want 3", len(got))
	}
	r := got[1]
	if r.Tick != 20 || r.Parent != 7 || r.ParentName != "alpha" || r.Destroyed != 42 || r.CoreSize != 5 {
		t.Errorf("record = %+v", r)
	}
	if len(r.Fragments) != 1 || r.Fragments[0].Velocity != [2]float64{2, -0.5} || len(r.Fragments[0].Blocks) != 2 {
		t.Errorf("fragments = %+v", r.Fragments)
	}
}

func TestSplitLog_AppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		l, err := NewSplitLog(dir, "same")
		if err != nil {
			t.Fatal(err)
		}
		if err := l.WriteSplits(context.Background(), []SplitRecord{sampleRecord("same", uint64(i))}); err != nil {
			t.Fatal(err)
		}
		if err := l.Close(); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ReadSplitLog(SplitLogPath(dir, "same"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("records = %d, want 2", len(got))
	}
}

func TestSplitLog_WriteAfterClose(t *testing.T) {
	l, err := NewSplitLog(t.TempDir(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.WriteSplits(context.Background(), []SplitRecord{sampleRecord("x", 1)}); err == nil {
		t.Error("write after close succeeded")
	}
}

func TestFragmentsPayload(t *testing.T) {
	rec := sampleRecord("run", 1)
	b, err := EncodeFragments(rec.Fragments)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeFragments(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 9 || got[0].HP != 150 || got[0].Blocks[1] != 41 {
		t.Errorf("decoded = %+v", got)
	}
	if _, err := DecodeFragments([]byte{0xc1}); err == nil {
		t.Error("decoded garbage")
	}
}
