package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunner_PhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"integrity", PhasePostUpdate, &log})
	r.Register(recorder{"dispatch", PhasePreUpdate, &log})
	r.Register(recorder{"impacts", PhasePreUpdate, &log})
	r.Register(recorder{"scenario", PhaseInput, &log})

	r.Tick(time.Millisecond)

	want := []string{"scenario", "dispatch", "impacts", "integrity", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("ran %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
	if r.Ticks() != 1 {
		t.Errorf("Ticks = %d", r.Ticks())
	}
}

func TestRunner_TickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"a", PhaseInput, &log})
	r.Register(recorder{"b", PhaseUpdate, &log})

	r.TickPhase(PhaseUpdate, time.Millisecond)
	if len(log) != 1 || log[0] != "b" {
		t.Errorf("ran %v", log)
	}
	if r.Ticks() != 0 {
		t.Errorf("TickPhase advanced the tick counter")
	}
}
