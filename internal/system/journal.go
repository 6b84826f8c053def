package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/core/event"
	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/persist"
)

// SplitSink stores split records. *persist.SplitRepo and *persist.SplitLog
// implement it.
type SplitSink interface {
	WriteSplits(ctx context.Context, records []persist.SplitRecord) error
}

// JournalSystem buffers split events and hands them to every sink every
// interval ticks. Phase 4 (Persist).
type JournalSystem struct {
	sinks     []SplitSink
	runID     string
	log       *zap.Logger
	buf       []persist.SplitRecord
	tickCount int
	interval  int // flush every N ticks
	written   int
	dropped   int
}

func NewJournalSystem(bus *event.Bus, sinks []SplitSink, runID string, log *zap.Logger, intervalTicks int) *JournalSystem {
	s := &JournalSystem{
		sinks:    sinks,
		runID:    runID,
		log:      log,
		interval: max(intervalTicks, 1),
	}
	event.Subscribe(bus, func(ev event.StructureSplit) {
		s.buf = append(s.buf, persist.NewSplitRecord(s.runID, ev))
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

// Written returns how many records at least one sink accepted.
func (s *JournalSystem) Written() int { return s.written }

// Dropped returns how many records every sink rejected.
func (s *JournalSystem) Dropped() int { return s.dropped }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes buffered records immediately. Called for graceful shutdown.
// A sink that fails keeps nothing back: records are dropped after one attempt
// so a dead database cannot grow the buffer without bound. Records count as
// written once at least one sink accepted them.
func (s *JournalSystem) Flush() {
	if len(s.buf) == 0 {
		return
	}
	if len(s.sinks) == 0 {
		s.buf = s.buf[:0]
		return
	}
	accepted := 0
	for _, sink := range s.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := sink.WriteSplits(ctx, s.buf)
		cancel()
		if err != nil {
			s.log.Error("split journal write failed",
				zap.Int("records", len(s.buf)),
				zap.Error(err),
			)
			continue
		}
		accepted++
	}
	if accepted > 0 {
		s.written += len(s.buf)
		s.log.Debug("split journal flushed", zap.Int("records", len(s.buf)), zap.Int("sinks", accepted))
	} else {
		s.dropped += len(s.buf)
	}
	s.buf = s.buf[:0]
}
