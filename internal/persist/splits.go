package persist

import (
	"context"
	"fmt"
)

type SplitRepo struct {
	db *DB
}

func NewSplitRepo(db *DB) *SplitRepo {
	return &SplitRepo{db: db}
}

// WriteSplits atomically writes a batch of split records in a single
// transaction. Fragment details go into a msgpack payload.
func (r *SplitRepo) WriteSplits(ctx context.Context, records []SplitRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("splits begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		payload, err := EncodeFragments(rec.Fragments)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO structure_splits (run_id, tick, parent_id, parent_name, destroyed, core_size, fragments, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.RunID, int64(rec.Tick), int64(rec.Parent), rec.ParentName, int64(rec.Destroyed),
			rec.CoreSize, len(rec.Fragments), payload,
		); err != nil {
			return fmt.Errorf("splits insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LoadRun returns every split recorded for a run, in tick order.
func (r *SplitRepo) LoadRun(ctx context.Context, runID string) ([]SplitRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT tick, parent_id, parent_name, destroyed, core_size, payload
		 FROM structure_splits WHERE run_id = $1 ORDER BY tick, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("splits query: %w", err)
	}
	defer rows.Close()

	var out []SplitRecord
	for rows.Next() {
		var (
			tick, parent, destroyed int64
			rec                     SplitRecord
			payload                 []byte
		)
		if err := rows.Scan(&tick, &parent, &rec.ParentName, &destroyed, &rec.CoreSize, &payload); err != nil {
			return nil, fmt.Errorf("splits scan: %w", err)
		}
		frags, err := DecodeFragments(payload)
		if err != nil {
			return nil, err
		}
		rec.RunID = runID
		rec.Tick = uint64(tick)
		rec.Parent = uint64(parent)
		rec.Destroyed = uint32(destroyed)
		rec.Fragments = frags
		out = append(out, rec)
	}
	return out, rows.Err()
}
