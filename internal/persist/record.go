package persist

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/voidbreak/hull/internal/core/event"
)

// SplitRecord is the journal form of one structure split.
type SplitRecord struct {
	RunID      string           `json:"run_id" msgpack:"run_id"`
	Tick       uint64           `json:"tick" msgpack:"tick"`
	Parent     uint64           `json:"parent" msgpack:"parent"`
	ParentName string           `json:"parent_name" msgpack:"parent_name"`
	Destroyed  uint32           `json:"destroyed" msgpack:"destroyed"`
	CoreSize   int              `json:"core_size" msgpack:"core_size"`
	Fragments  []FragmentRecord `json:"fragments" msgpack:"fragments"`
}

// FragmentRecord is one structure spawned by a split, as it was at the
// instant of separation.
type FragmentRecord struct {
	ID              uint64     `json:"id" msgpack:"id"`
	Blocks          []uint32   `json:"blocks" msgpack:"blocks"`
	Velocity        [2]float64 `json:"velocity" msgpack:"velocity"`
	AngularVelocity float64    `json:"angular_velocity" msgpack:"angular_velocity"`
	Mass            float64    `json:"mass" msgpack:"mass"`
	HP              float64    `json:"hp" msgpack:"hp"`
}

// NewSplitRecord converts a split event into its journal form.
func NewSplitRecord(runID string, ev event.StructureSplit) SplitRecord {
	r := SplitRecord{
		RunID:      runID,
		Tick:       ev.Tick,
		Parent:     uint64(ev.Parent),
		ParentName: ev.ParentName,
		Destroyed:  uint32(ev.Destroyed),
		CoreSize:   ev.CoreSize,
		Fragments:  make([]FragmentRecord, len(ev.Fragments)),
	}
	for i, f := range ev.Fragments {
		blocks := make([]uint32, len(f.Blocks))
		for j, id := range f.Blocks {
			blocks[j] = uint32(id)
		}
		r.Fragments[i] = FragmentRecord{
			ID:              uint64(f.ID),
			Blocks:          blocks,
			Velocity:        f.Velocity,
			AngularVelocity: f.AngularVelocity,
			Mass:            f.Mass,
			HP:              f.HP,
		}
	}
	return r
}

// EncodeFragments packs fragment records for the payload column.
func EncodeFragments(frags []FragmentRecord) ([]byte, error) {
	b, err := msgpack.Marshal(frags)
	if err != nil {
		return nil, fmt.Errorf("encode fragments: %w", err)
	}
	return b, nil
}

// DecodeFragments unpacks a payload written by EncodeFragments.
func DecodeFragments(b []byte) ([]FragmentRecord, error) {
	var frags []FragmentRecord
	if err := msgpack.Unmarshal(b, &frags); err != nil {
		return nil, fmt.Errorf("decode fragments: %w", err)
	}
	return frags, nil
}
