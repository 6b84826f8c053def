package system

import (
	"github.com/voidbreak/hull/internal/core/event"
)

// Summary tallies simulation events for the end-of-run report.
type Summary struct {
	Impacts             int
	DamageDealt         float64
	BlocksDestroyed     int
	Splits              int
	Fragments           int
	StructuresDestroyed int
}

// NewSummary subscribes a fresh tally to bus.
func NewSummary(bus *event.Bus) *Summary {
	s := &Summary{}
	event.Subscribe(bus, func(ev event.BlockDamaged) {
		s.Impacts++
		s.DamageDealt += ev.Damage
	})
	event.Subscribe(bus, func(event.BlockDestroyed) { s.BlocksDestroyed++ })
	event.Subscribe(bus, func(ev event.StructureSplit) {
		s.Splits++
		s.Fragments += len(ev.Fragments)
	})
	event.Subscribe(bus, func(event.StructureDestroyed) { s.StructuresDestroyed++ })
	return s
}
