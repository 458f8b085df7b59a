package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/order"
)

// ErrRunNotFound is returned when no run matches the requested id.
var ErrRunNotFound = errors.New("run not found")

// Run is the summary row of one recorded domain pass.
type Run struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Tag         string    `json:"tag"`
	GraphHash   string    `json:"graph_hash"`
	ToolVersion string    `json:"tool_version"`
	Vertices    int       `json:"vertices"`
	Preset      int       `json:"preset"`
	Concrete    int       `json:"concrete"`
	Deleted     int       `json:"deleted"`
	Pruned      int       `json:"pruned"`
	Interned    int       `json:"interned"`
	Hits        int       `json:"hits"`
	CreatedAt   time.Time `json:"created_at"`
}

// CanonSet is one stored trigger set.
type CanonSet struct {
	Handle canon.Handle `json:"handle"`
	Key    string       `json:"key"`
	Items  []string     `json:"items"`
	Text   string       `json:"text"`
	Multi  bool         `json:"multi,omitempty"`
}

const runColumns = `id, seq, tag, graph_hash, tool_version, vertices, preset, concrete, deleted, pruned, interned, hits, created_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r         Run
		createdAt string
	)
	err := row.Scan(&r.ID, &r.Seq, &r.Tag, &r.GraphHash, &r.ToolVersion,
		&r.Vertices, &r.Preset, &r.Concrete, &r.Deleted, &r.Pruned, &r.Interned, &r.Hits, &createdAt)
	if err != nil {
		return Run{}, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns the recorded runs ordered by seq. An empty tag lists every
// run.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, tag string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if tag != "" {
		query += ` WHERE tag = ?`
		args = append(args, tag)
	}
	query += ` ORDER BY seq ASC`
	return s.queryRuns(ctx, query, args...)
}

// RunsByHash returns the runs of graphs with the given content hash, ordered
// by seq.
func (s *Store) RunsByHash(ctx context.Context, graphHash string) ([]Run, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs WHERE graph_hash = ? ORDER BY seq ASC`, graphHash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with the given id. The id may be abbreviated to
// any prefix that matches exactly one run.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	full, err := s.resolveRunID(ctx, id)
	if err != nil {
		return Run{}, err
	}

	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, full))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return r, nil
}

func (s *Store) resolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY seq ASC LIMIT 2`, escaped+"%")
	if err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolve run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		for _, id := range ids {
			if id == prefix {
				return id, nil
			}
		}
		return "", fmt.Errorf("run id %q is ambiguous", prefix)
	}
}

// ReadDomains returns the vertex domains of a run ordered by vertex id.
func (s *Store) ReadDomains(ctx context.Context, runID string) ([]order.VertexDomain, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vertex_id, kind, name, phase, handle, deleted, domain
		FROM vertex_domains
		WHERE run_id = ?
		ORDER BY vertex_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query vertex domains: %w", err)
	}
	defer rows.Close()

	domains := []order.VertexDomain{}
	for rows.Next() {
		var (
			vd      order.VertexDomain
			id      int
			handle  uint32
			deleted int
		)
		if err := rows.Scan(&id, &vd.Kind, &vd.Name, &vd.Phase, &handle, &deleted, &vd.Domain); err != nil {
			return nil, fmt.Errorf("scan vertex domain: %w", err)
		}
		vd.ID = graph.VertexID(id)
		vd.Handle = canon.Handle(handle)
		vd.Deleted = deleted != 0
		domains = append(domains, vd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vertex domains: %w", err)
	}
	return domains, nil
}

// ReadCanon returns the trigger sets of a run ordered by handle.
func (s *Store) ReadCanon(ctx context.Context, runID string) ([]CanonSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle, key, items, text, multi
		FROM canon_sets
		WHERE run_id = ?
		ORDER BY handle ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query canon sets: %w", err)
	}
	defer rows.Close()

	sets := []CanonSet{}
	for rows.Next() {
		var (
			cs     CanonSet
			handle uint32
			items  string
			multi  int
		)
		if err := rows.Scan(&handle, &cs.Key, &items, &cs.Text, &multi); err != nil {
			return nil, fmt.Errorf("scan canon set: %w", err)
		}
		if cs.Items, err = unmarshalItems(items); err != nil {
			return nil, err
		}
		cs.Handle = canon.Handle(handle)
		cs.Multi = multi != 0
		sets = append(sets, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canon sets: %w", err)
	}
	return sets, nil
}

// ReadPruned returns the names of the logic blocks a run removed, in the
// order they were removed.
func (s *Store) ReadPruned(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM pruned_logic WHERE run_id = ? ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query pruned logic: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan pruned logic: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pruned logic: %w", err)
	}
	return names, nil
}
