package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/order"
	"github.com/roach88/hdlorder/internal/runid"
	"github.com/roach88/hdlorder/internal/testutil"
)

// createTestStore creates a file-backed store with deterministic ids and
// timestamps.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithRunIDs(runid.NewFixedGenerator(ids...)),
		WithClock(testutil.NewSteppingClock().Now),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord runs the domain pass over a two-clock design with one
// dead logic block:
//
//	x (posedge clk) ─┐
//	                 ├─> mix
//	y (posedge rst) ─┘
//	                     idle
func createTestRecord(t *testing.T, tag string) RunRecord {
	t.Helper()
	fx := testutil.NewFixture(t)
	x := fx.Var("x", fx.Set("posedge clk"))
	y := fx.Var("y", fx.Set("posedge rst"))
	mix := fx.Logic("mix")
	fx.Logic("idle")
	fx.Edge(x, mix, 1)
	fx.Edge(y, mix, 1)

	res, err := order.ProcessDomains(fx.Netlist, fx.Graph, fx.Canon, nil, order.Options{Tag: tag})
	require.NoError(t, err)
	return RunRecord{Tag: tag, GraphHash: "hash-" + tag, Result: res, Canon: fx.Canon}
}
