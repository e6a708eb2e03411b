package mutationtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEngineSimpleRearrangement is spec scenario 1: root = [A,B,C,D];
// move A from the front to the back. Exactly one record should survive,
// for A, and it should be fully resolved without ever synchronizing.
func TestEngineSimpleRearrangement(t *testing.T) {
	e := newEngine[string]()

	e.Mutation("root", []string{"A"}, nil, NoneSibling[string](), HandleSibling("B"))
	e.Mutation("root", nil, []string{"A"}, HandleSibling("D"), NoneSibling[string]())

	require.Equal(t, 1, e.Len())
	mn, ok := e.Get("A")
	require.True(t, ok)

	require.True(t, mn.original.IsKnown())
	require.Equal(t, "root", must(mn.original.Parent()))
	require.True(t, mn.original.prev.IsNone())
	require.Equal(t, "B", must(mn.original.next.Handle()))

	require.True(t, mn.mutated.IsKnown())
	require.Equal(t, "D", must(mn.mutated.prev.Handle()))
	require.True(t, mn.mutated.next.IsNone())

	for _, h := range []string{"B", "C", "D"} {
		_, ok := e.Get(h)
		require.False(t, ok, "%s should have no record", h)
	}
}

// TestEngineCancelViaAddThenRemove is spec scenario 2: insert A, then
// remove it again before anything else observes it. The engine must end
// up completely empty.
func TestEngineCancelViaAddThenRemove(t *testing.T) {
	e := newEngine[string]()

	e.Mutation("root", nil, []string{"A"}, NoneSibling[string](), NoneSibling[string]())
	e.Mutation("root", []string{"A"}, nil, NoneSibling[string](), NoneSibling[string]())

	require.True(t, e.IsEmpty())
}

// TestEngineReversionThroughIntermediary is spec scenario 4: root =
// [A,B,C]; remove B, remove A, append A, prepend B. Final order is
// [B,A,C]. C must end up fixed (no record) while A and B remain floating.
func TestEngineReversionThroughIntermediary(t *testing.T) {
	e := newEngine[string]()

	e.Mutation("root", []string{"B"}, nil, HandleSibling("A"), HandleSibling("C"))
	e.Mutation("root", []string{"A"}, nil, NoneSibling[string](), HandleSibling("C"))
	e.Mutation("root", nil, []string{"A"}, HandleSibling("C"), NoneSibling[string]())
	e.Mutation("root", nil, []string{"B"}, NoneSibling[string](), HandleSibling("A"))

	_, cOK := e.Get("C")
	require.False(t, cOK, "C should have reverted to fixed")

	_, aOK := e.Get("A")
	require.True(t, aOK, "A should still be floating")
	_, bOK := e.Get("B")
	require.True(t, bOK, "B should still be floating")
}

// TestEngineSynchronizeResolvesUnknowns checks that a removal reporting a
// node the engine has never seen before (it was fixed until now) resolves
// that node's original sides from the reported neighbors, and that no
// position is left Partial once Synchronize has consulted the live tree.
func TestEngineSynchronizeResolvesUnknowns(t *testing.T) {
	e := newEngine[string]()

	// root = [A,B] originally. B is removed with A reported as its left
	// neighbor. A has no record, so it is fixed, and the search for B's
	// left original sibling resolves to A at once; the right side is the
	// list boundary. B's original position is therefore already Known.
	e.Mutation("root", []string{"B"}, nil, HandleSibling("A"), NoneSibling[string]())

	mn, ok := e.Get("B")
	require.True(t, ok)
	require.True(t, mn.original.IsKnown())

	tree := &stubLiveTree{
		parents: map[string]string{"A": "root"},
		nextOf:  map[string]Sibling[string]{"A": NoneSibling[string]()},
		prevOf:  map[string]Sibling[string]{"A": NoneSibling[string]()},
	}
	e.Synchronize(tree)

	mn, ok = e.Get("B")
	if ok {
		require.True(t, mn.original.IsKnown(), "after Synchronize no position should remain Partial")
	}
}

func must[H comparable](h H, ok bool) H {
	if !ok {
		panic("must: not ok")
	}
	return h
}

type stubLiveTree struct {
	parents map[string]string
	prevOf  map[string]Sibling[string]
	nextOf  map[string]Sibling[string]
}

func (s *stubLiveTree) Parent(h string) (string, bool) {
	p, ok := s.parents[h]
	return p, ok
}
func (s *stubLiveTree) PrevSibling(h string) (Sibling[string], bool) {
	v, ok := s.prevOf[h]
	return v, ok
}
func (s *stubLiveTree) NextSibling(h string) (Sibling[string], bool) {
	v, ok := s.nextOf[h]
	return v, ok
}
func (s *stubLiveTree) AttributeValue(h string, key string) (string, bool) { return "", false }
func (s *stubLiveTree) CharacterData(h string) (string, bool)              { return "", false }
