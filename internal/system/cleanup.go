package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/world"
)

// CleanupSystem flushes the deferred structure destruction queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, id := range s.world.FlushDestroyed() {
		s.log.Debug("structure removed", zap.Uint64("structure", uint64(id)))
	}
}
