package order

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/testutil"
)

func newTestAssigner(fx *testutil.Fixture) *assigner {
	return newAssigner(fx.Graph, fx.Canon, nil, slog.New(slog.DiscardHandler), nil)
}

// TestCombine_Identity tests that combining a set with itself returns it
// unchanged.
func TestCombine_Identity(t *testing.T) {
	fx := testutil.NewFixture(t)
	h := fx.Set("posedge clk")
	v := fx.Logic("v")
	p := newTestAssigner(fx)

	got, err := p.combine(canonicalTerm(h), canonicalTerm(h), v)
	require.NoError(t, err)
	assert.True(t, got.canonical())
	assert.Equal(t, h, got.handle)
	assert.Equal(t, 1, fx.Canon.Len())
}

// TestCombine_DeletedFirstOperandAbsorbed tests combine(DEL, B) == B.
func TestCombine_DeletedFirstOperandAbsorbed(t *testing.T) {
	fx := testutil.NewFixture(t)
	h := fx.Set("posedge clk")
	v := fx.Logic("v")
	p := newTestAssigner(fx)

	got, err := p.combine(deletedTerm(), canonicalTerm(h), v)
	require.NoError(t, err)
	assert.Equal(t, h, got.handle)

	got, err = p.combine(deletedTerm(), deletedTerm(), v)
	require.NoError(t, err)
	assert.True(t, got.deleted)
}

// TestCombine_DeletedSecondOperand tests that the delete domain is rejected
// as the second operand.
func TestCombine_DeletedSecondOperand(t *testing.T) {
	fx := testutil.NewFixture(t)
	h := fx.Set("posedge clk")
	v := fx.Logic("v")
	p := newTestAssigner(fx)

	_, err := p.combine(canonicalTerm(h), deletedTerm(), v)
	require.Error(t, err)

	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ErrCodeDeleteOperand, ie.Code)
	assert.Contains(t, ie.Vertex, "logic#1(v)")
}

// TestCombine_MergeIsTransientUntilSimplified tests that merging two sets
// builds a derived set that only enters the canon through simplify.
func TestCombine_MergeIsTransientUntilSimplified(t *testing.T) {
	fx := testutil.NewFixture(t)
	clk := fx.Set("posedge clk")
	rst := fx.Set("posedge rst")
	v := fx.Logic("v")
	p := newTestAssigner(fx)

	merged, err := p.combine(canonicalTerm(clk), canonicalTerm(rst), v)
	require.NoError(t, err)
	assert.False(t, merged.canonical())
	assert.True(t, merged.tree.Multi)
	assert.Equal(t, 2, fx.Canon.Len(), "combine must not intern")

	// The canonical operands are untouched
	assert.Equal(t, "posedge clk", fx.Canon.String(clk))
	assert.Equal(t, "posedge rst", fx.Canon.String(rst))

	h := p.simplify(merged)
	assert.Equal(t, 3, fx.Canon.Len())
	assert.Equal(t, "posedge clk or posedge rst", fx.Canon.String(h))
	assert.True(t, fx.Canon.Multi(h))
}

// TestCombine_TransientExtendedInPlace tests chaining several merges before
// interning once.
func TestCombine_TransientExtendedInPlace(t *testing.T) {
	fx := testutil.NewFixture(t)
	a := fx.Set("posedge a")
	b := fx.Set("posedge b")
	c := fx.Set("posedge c", "posedge a")
	v := fx.Logic("v")
	p := newTestAssigner(fx)

	ab, err := p.combine(canonicalTerm(b), canonicalTerm(a), v)
	require.NoError(t, err)
	abc, err := p.combine(ab, canonicalTerm(c), v)
	require.NoError(t, err)
	assert.Same(t, ab.tree, abc.tree)

	h := p.simplify(abc)
	assert.Equal(t, "posedge a or posedge b or posedge c", fx.Canon.String(h))
}

// TestSimplify_CanonicalIsUnchanged tests that an interned set passes
// through simplify.
func TestSimplify_CanonicalIsUnchanged(t *testing.T) {
	fx := testutil.NewFixture(t)
	h := fx.Set("negedge rst_n")
	p := newTestAssigner(fx)

	assert.Equal(t, h, p.simplify(canonicalTerm(h)))
	assert.Equal(t, canon.Stats{Interned: 1}, fx.Canon.Stats())
}

func TestTerm_Same(t *testing.T) {
	assert.True(t, deletedTerm().same(deletedTerm()))
	assert.False(t, deletedTerm().same(canonicalTerm(1)))
	assert.True(t, canonicalTerm(2).same(canonicalTerm(2)))
	assert.False(t, canonicalTerm(2).same(canonicalTerm(3)))
}
