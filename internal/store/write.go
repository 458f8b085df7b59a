package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/ir"
	"github.com/roach88/hdlorder/internal/order"
)

// RunRecord is everything WriteRun persists about one domain pass.
type RunRecord struct {
	Tag       string
	GraphHash string
	Result    *order.Result
	Canon     *canon.Canon
}

// WriteRun records a finished domain pass and returns the stored run.
//
// The run row and all of its child rows are written in one transaction, so a
// failed write leaves no partial run behind. The run's seq is one more than
// the largest seq already stored.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (Run, error) {
	if rec.Result == nil || rec.Canon == nil {
		return Run{}, errors.New("write run: result and canon are required")
	}
	res := rec.Result

	run := Run{
		ID:          s.ids.Generate(),
		Tag:         rec.Tag,
		GraphHash:   rec.GraphHash,
		ToolVersion: ir.ToolVersion,
		Vertices:    res.Vertices,
		Preset:      res.Preset,
		Concrete:    res.Concrete,
		Deleted:     res.Deleted,
		Pruned:      len(res.Pruned),
		Interned:    res.Canon.Interned,
		Hits:        res.Canon.Hits,
		CreatedAt:   s.clock().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, tag, graph_hash, tool_version, vertices, preset, concrete, deleted, pruned, interned, hits, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Tag,
		run.GraphHash,
		run.ToolVersion,
		run.Vertices,
		run.Preset,
		run.Concrete,
		run.Deleted,
		run.Pruned,
		run.Interned,
		run.Hits,
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	for _, h := range rec.Canon.Handles() {
		items, err := marshalItems(rec.Canon.Tree(h))
		if err != nil {
			return Run{}, fmt.Errorf("write run: set %s: %w", h, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO canon_sets (run_id, handle, key, items, text, multi)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, uint32(h), rec.Canon.Key(h), items, rec.Canon.String(h), boolToInt(rec.Canon.Multi(h)))
		if err != nil {
			return Run{}, fmt.Errorf("write run: set %s: %w", h, err)
		}
	}

	for _, vd := range res.Domains {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vertex_domains (run_id, vertex_id, kind, name, phase, handle, deleted, domain)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, int(vd.ID), vd.Kind, vd.Name, vd.Phase, uint32(vd.Handle), boolToInt(vd.Deleted), vd.Domain)
		if err != nil {
			return Run{}, fmt.Errorf("write run: vertex %d: %w", vd.ID, err)
		}
	}

	for i, name := range res.Pruned {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pruned_logic (run_id, position, name) VALUES (?, ?, ?)
		`, run.ID, i, name)
		if err != nil {
			return Run{}, fmt.Errorf("write run: pruned %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// DeleteRun removes a run and its child rows. Deleting an unknown id is not
// an error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
