package system

import (
	"time"

	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/world"
)

// MotionSystem advances every structure's pose by its velocities. Forces and
// collision response belong to the physics layer; this only keeps poses and
// inherited velocities meaningful in a headless run. Phase 2 (Update).
type MotionSystem struct {
	world *world.State
}

func NewMotionSystem(ws *world.State) *MotionSystem {
	return &MotionSystem{world: ws}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	s.world.AllStructures(func(st *world.Structure) {
		st.Position = st.Position.Add(st.Velocity.Scale(sec))
		st.Rotation += st.AngularVelocity * sec
	})
}
