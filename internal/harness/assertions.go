package harness

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/hdlorder/internal/store"
)

// validIdentifier matches valid SQL identifiers (column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// runColumn names the column that ties each stored table to its run.
var runColumn = map[string]string{
	"runs":           "id",
	"canon_sets":     "run_id",
	"vertex_domains": "run_id",
	"pruned_logic":   "run_id",
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Report   []string // Domain report for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Report) > 0 {
		fmt.Fprintf(&buf, "\nDomain report:\n")
		for _, line := range e.Report {
			fmt.Fprintf(&buf, "%s\n", line)
		}
	}

	return buf.String()
}

func (r *Result) lookup(typ, id string) (domainOf, error) {
	vd, ok := r.Domain(id)
	if !ok {
		return domainOf{}, &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("vertex %q in the recorded run", id),
			Actual:   "no such vertex",
		}
	}
	return domainOf{id: id, text: vd.Domain, handle: uint32(vd.Handle), deleted: vd.Deleted}, nil
}

type domainOf struct {
	id      string
	text    string
	handle  uint32
	deleted bool
}

// assertDomain checks that a vertex has exactly the given trigger set.
// Both sides are compared in canonical form, so item order in the
// expectation does not matter.
func assertDomain(r *Result, a Assertion) error {
	d, err := r.lookup(a.Type, a.Vertex)
	if err != nil {
		return err
	}
	text, ok := a.Expect.(string)
	if !ok {
		return fmt.Errorf("domain assertion for %q: expect must be a string", a.Vertex)
	}
	want, err := canonicalText(text)
	if err != nil {
		return fmt.Errorf("domain assertion for %q: %w", a.Vertex, err)
	}
	if d.deleted || d.text != want {
		return &AssertionError{
			Type:     AssertDomain,
			Expected: fmt.Sprintf("%s has domain %q", a.Vertex, want),
			Actual:   fmt.Sprintf("domain %q", d.text),
			Report:   r.Report,
		}
	}
	return nil
}

// assertDeleted checks that a vertex can never be triggered.
func assertDeleted(r *Result, a Assertion) error {
	d, err := r.lookup(a.Type, a.Vertex)
	if err != nil {
		return err
	}
	if !d.deleted {
		return &AssertionError{
			Type:     AssertDeleted,
			Expected: fmt.Sprintf("%s is deleted", a.Vertex),
			Actual:   fmt.Sprintf("domain %q", d.text),
			Report:   r.Report,
		}
	}
	return nil
}

// assertMulti checks that a vertex domain was derived by merging sets.
func assertMulti(r *Result, a Assertion) error {
	vd, ok := r.Domain(a.Vertex)
	if !ok {
		_, err := r.lookup(a.Type, a.Vertex)
		return err
	}
	cs, ok := r.CanonSet(vd)
	if !ok || !cs.Multi {
		return &AssertionError{
			Type:     AssertMulti,
			Expected: fmt.Sprintf("%s has a merged domain", a.Vertex),
			Actual:   fmt.Sprintf("domain %q", vd.Domain),
			Report:   r.Report,
		}
	}
	return nil
}

// assertSameDomain checks that all vertices share one handle. Deleted
// vertices never share a domain with anything.
func assertSameDomain(r *Result, a Assertion) error {
	first, err := r.lookup(a.Type, a.Vertices[0])
	if err != nil {
		return err
	}
	for _, id := range a.Vertices[1:] {
		d, err := r.lookup(a.Type, id)
		if err != nil {
			return err
		}
		if first.deleted || d.deleted || d.handle != first.handle {
			return &AssertionError{
				Type:     AssertSameDomain,
				Expected: fmt.Sprintf("%v share one domain", a.Vertices),
				Actual:   fmt.Sprintf("%s has %q, %s has %q", first.id, first.text, d.id, d.text),
				Report:   r.Report,
			}
		}
	}
	return nil
}

// assertDistinctDomains checks that no two vertices share a handle.
func assertDistinctDomains(r *Result, a Assertion) error {
	seen := make(map[uint32]string)
	for _, id := range a.Vertices {
		d, err := r.lookup(a.Type, id)
		if err != nil {
			return err
		}
		if d.deleted {
			continue
		}
		if other, dup := seen[d.handle]; dup {
			return &AssertionError{
				Type:     AssertDistinctDomains,
				Expected: fmt.Sprintf("%v have distinct domains", a.Vertices),
				Actual:   fmt.Sprintf("%s and %s share %q", other, id, d.text),
				Report:   r.Report,
			}
		}
		seen[d.handle] = id
	}
	return nil
}

// assertPruned checks the exact list of removed logic blocks.
func assertPruned(r *Result, a Assertion) error {
	if !slices.Equal(r.Pruned, a.Logic) {
		return &AssertionError{
			Type:     AssertPruned,
			Expected: fmt.Sprintf("pruned %v", a.Logic),
			Actual:   fmt.Sprintf("pruned %v", r.Pruned),
		}
	}
	return nil
}

// assertCanonSize checks the number of distinct trigger sets.
func assertCanonSize(r *Result, a Assertion) error {
	if len(r.Canon) != *a.Count {
		texts := make([]string, len(r.Canon))
		for i, cs := range r.Canon {
			texts[i] = cs.Text
		}
		return &AssertionError{
			Type:     AssertCanonSize,
			Expected: fmt.Sprintf("%d trigger sets", *a.Count),
			Actual:   fmt.Sprintf("%d trigger sets: %q", len(r.Canon), texts),
		}
	}
	return nil
}

// assertStored checks one stored row of the run against expected values
// using subset semantics.
//
// Security: Table names are restricted to the run tables and column names
// are validated against a whitelist pattern to prevent SQL injection via
// identifier interpolation.
func assertStored(ctx context.Context, st *store.Store, runID string, a Assertion) error {
	col, ok := runColumn[a.Table]
	if !ok {
		return fmt.Errorf("invalid table name %q: must be one of runs, canon_sets, vertex_domains, pruned_logic", a.Table)
	}

	where := make(map[string]any, len(a.Where)+1)
	for k, v := range a.Where {
		where[k] = v
	}
	where[col] = runID

	whereSQL, whereArgs, err := buildWhereClause(where)
	if err != nil {
		return err
	}

	rows, err := st.Query(ctx, fmt.Sprintf("SELECT * FROM %s WHERE %s", a.Table, whereSQL), whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("query table %s", a.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("row in %s where %s", a.Table, formatWhereClause(a.Where)),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	// More than one match means the assertion is ambiguous
	if rows.Next() {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("exactly one row in %s where %s", a.Table, formatWhereClause(a.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]any, len(columns))
	for i, c := range columns {
		actualRow[c] = values[i]
	}

	expect, ok := a.Expect.(map[string]any)
	if !ok {
		return fmt.Errorf("stored assertion on %s: expect must be a map", a.Table)
	}
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertStored,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}
		if !storedValuesEqual(expect[key], actualValue) {
			return &AssertionError{
				Type:     AssertStored,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expect[key], expect[key]),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}

	return nil
}

// buildWhereClause constructs parameterized WHERE clause from assertion.Where.
// Returns SQL fragment, arguments slice, and error. Keys are sorted for determinism.
//
// Security: Column names are validated against a whitelist pattern to prevent
// SQL injection via identifier interpolation.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML scalar to a SQL-compatible value.
func toSQLValue(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case string, int, int64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// storedValuesEqual compares a YAML expectation with a SQLite value.
// SQLite returns integers as int64, booleans as 0/1 and text as string or
// []byte.
func storedValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	switch exp := expected.(type) {
	case string:
		s, ok := actual.(string)
		return ok && exp == s
	case int:
		n, ok := actual.(int64)
		return ok && int64(exp) == n
	case int64:
		n, ok := actual.(int64)
		return ok && exp == n
	case bool:
		n, ok := actual.(int64)
		return ok && exp == (n != 0)
	default:
		return fmt.Sprint(expected) == fmt.Sprint(actual)
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for stored assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertDomain:
			err = assertDomain(result, assertion)
		case AssertDeleted:
			err = assertDeleted(result, assertion)
		case AssertMulti:
			err = assertMulti(result, assertion)
		case AssertSameDomain:
			err = assertSameDomain(result, assertion)
		case AssertDistinctDomains:
			err = assertDistinctDomains(result, assertion)
		case AssertPruned:
			err = assertPruned(result, assertion)
		case AssertCanonSize:
			err = assertCanonSize(result, assertion)
		case AssertStored:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored requires database context", i)
			} else {
				err = assertStored(actx.Ctx, actx.Store, result.RunID, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
