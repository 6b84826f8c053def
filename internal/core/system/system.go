package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: feed scripted impacts into the bus
	PhasePreUpdate               // 1: dispatch last tick's events, apply damage
	PhaseUpdate                  // 2: integrate motion
	PhasePostUpdate              // 3: structural integrity checks
	PhasePersist                 // 4: split journal flush
	PhaseCleanup                 // 5: destroy queued structures
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
