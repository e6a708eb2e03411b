package mutationtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// memTree is a small in-memory LiveTree/TreeMutator used by coordinator
// tests to exercise Synchronize, RangeOf, and Revert against a real
// (if tiny) tree implementation rather than a hand-wired stub.
type memTree struct {
	parent   map[string]string
	hasParent map[string]bool
	children map[string][]string
	attrs    map[string]map[string]string
	data     map[string]string
}

func newMemTree() *memTree {
	return &memTree{
		parent:    make(map[string]string),
		hasParent: make(map[string]bool),
		children:  make(map[string][]string),
		attrs:     make(map[string]map[string]string),
		data:      make(map[string]string),
	}
}

func (m *memTree) setChildren(parent string, kids ...string) {
	m.children[parent] = append([]string{}, kids...)
	for _, k := range kids {
		m.parent[k] = parent
		m.hasParent[k] = true
	}
}

func (m *memTree) Parent(h string) (string, bool) {
	if !m.hasParent[h] {
		return "", false
	}
	return m.parent[h], true
}

func (m *memTree) PrevSibling(h string) (Sibling[string], bool) {
	p, ok := m.Parent(h)
	if !ok {
		return Sibling[string]{}, false
	}
	kids := m.children[p]
	for i, k := range kids {
		if k == h {
			if i == 0 {
				return NoneSibling[string](), true
			}
			return HandleSibling(kids[i-1]), true
		}
	}
	return Sibling[string]{}, false
}

func (m *memTree) NextSibling(h string) (Sibling[string], bool) {
	p, ok := m.Parent(h)
	if !ok {
		return Sibling[string]{}, false
	}
	kids := m.children[p]
	for i, k := range kids {
		if k == h {
			if i == len(kids)-1 {
				return NoneSibling[string](), true
			}
			return HandleSibling(kids[i+1]), true
		}
	}
	return Sibling[string]{}, false
}

func (m *memTree) AttributeValue(h, key string) (string, bool) {
	v, ok := m.attrs[h][key]
	return v, ok
}

func (m *memTree) CharacterData(h string) (string, bool) {
	v, ok := m.data[h]
	return v, ok
}

func (m *memTree) Remove(h string) error {
	p, ok := m.Parent(h)
	if !ok {
		return nil
	}
	kids := m.children[p]
	for i, k := range kids {
		if k == h {
			m.children[p] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	m.hasParent[h] = false
	return nil
}

func (m *memTree) detach(nodes ...string) {
	for _, n := range nodes {
		_ = m.Remove(n)
	}
}

func (m *memTree) InsertBefore(ref string, nodes ...string) error {
	p, ok := m.Parent(ref)
	if !ok {
		return errors.New("memTree: InsertBefore: ref has no parent")
	}
	m.detach(nodes...)
	kids := m.children[p]
	idx := 0
	for i, k := range kids {
		if k == ref {
			idx = i
			break
		}
	}
	out := append([]string{}, kids[:idx]...)
	out = append(out, nodes...)
	out = append(out, kids[idx:]...)
	m.children[p] = out
	for _, n := range nodes {
		m.parent[n], m.hasParent[n] = p, true
	}
	return nil
}

func (m *memTree) Append(parent string, nodes ...string) error {
	m.detach(nodes...)
	m.children[parent] = append(m.children[parent], nodes...)
	for _, n := range nodes {
		m.parent[n], m.hasParent[n] = parent, true
	}
	return nil
}

func (m *memTree) Prepend(parent string, nodes ...string) error {
	m.detach(nodes...)
	m.children[parent] = append(append([]string{}, nodes...), m.children[parent]...)
	for _, n := range nodes {
		m.parent[n], m.hasParent[n] = parent, true
	}
	return nil
}

func (m *memTree) SetAttribute(h, key, value string) error {
	if m.attrs[h] == nil {
		m.attrs[h] = make(map[string]string)
	}
	m.attrs[h][key] = value
	return nil
}

func (m *memTree) RemoveAttribute(h, key string) error {
	delete(m.attrs[h], key)
	return nil
}

func (m *memTree) SetCharacterData(h, value string) error {
	m.data[h] = value
	return nil
}

func TestTrackerRevertRestoresOriginalTree(t *testing.T) {
	tree := newMemTree()
	tree.setChildren("root", "A", "B", "C", "D")

	tracker := NewTracker[string](tree, tree, TrackerOptions{})

	// Move A from front to back, mirroring the change into the tree the
	// way a real caller would alongside its observer callback.
	require.NoError(t, tree.Remove("A"))
	require.NoError(t, tracker.RecordChildren("root", []string{"A"}, nil, NoneSibling[string](), HandleSibling("B")))
	require.NoError(t, tree.Append("root", "A"))
	require.NoError(t, tracker.RecordChildren("root", nil, []string{"A"}, HandleSibling("D"), NoneSibling[string]()))

	require.Equal(t, []string{"B", "C", "D", "A"}, tree.children["root"])
	require.True(t, tracker.Mutated(nil))

	require.NoError(t, tracker.Revert())

	require.Equal(t, []string{"A", "B", "C", "D"}, tree.children["root"])
	require.False(t, tracker.Mutated(nil))
}

func TestTrackerPropertyRevertScenario(t *testing.T) {
	tree := newMemTree()
	tree.setChildren("root", "X")
	require.NoError(t, tree.SetAttribute("X", "id", "A"))

	tracker := NewTracker[string](tree, tree, TrackerOptions{})

	tracker.RecordAttribute("X", "id", "B", false, "A", false)
	require.NoError(t, tree.SetAttribute("X", "id", "B"))
	require.True(t, tracker.Mutated(nil))

	// A later report reveals the value went back to A.
	require.NoError(t, tree.SetAttribute("X", "id", "A"))
	tracker.RecordAttribute("X", "id", "A", false, "B", false)

	require.False(t, tracker.Mutated(nil))
	require.NoError(t, tracker.Synchronize())
}

func TestTrackerRangeOfAmbiguousAcrossRoots(t *testing.T) {
	tree := newMemTree()
	tree.setChildren("R1", "A", "C")
	tree.setChildren("R2", "B", "D")

	tracker := NewTracker[string](tree, tree, TrackerOptions{})

	require.NoError(t, tree.Remove("A"))
	require.NoError(t, tracker.RecordChildren("R1", []string{"A"}, nil, NoneSibling[string](), HandleSibling("C")))
	require.NoError(t, tree.Append("R1", "A"))
	require.NoError(t, tracker.RecordChildren("R1", nil, []string{"A"}, HandleSibling("C"), NoneSibling[string]()))

	require.NoError(t, tree.Remove("B"))
	require.NoError(t, tracker.RecordChildren("R2", []string{"B"}, nil, NoneSibling[string](), HandleSibling("D")))
	require.NoError(t, tree.Append("R2", "B"))
	require.NoError(t, tracker.RecordChildren("R2", nil, []string{"B"}, HandleSibling("D"), NoneSibling[string]()))

	_, err := tracker.RangeOf(nil)
	require.ErrorIs(t, err, ErrAmbiguousRange)

	r1 := "R1"
	rng, err := tracker.RangeOf(&r1)
	require.NoError(t, err)
	require.False(t, rng.IsNull())
}

func TestTrackerGroupedChildrenRoundTrip(t *testing.T) {
	tree := newMemTree()
	tree.setChildren("root", "A", "B", "C", "D")
	tracker := NewTracker[string](tree, tree, TrackerOptions{})

	require.NoError(t, tree.Remove("A"))
	require.NoError(t, tracker.RecordChildren("root", []string{"A"}, nil, NoneSibling[string](), HandleSibling("B")))
	require.NoError(t, tree.Append("root", "A"))
	require.NoError(t, tracker.RecordChildren("root", nil, []string{"A"}, HandleSibling("D"), NoneSibling[string]()))

	groups := tracker.DiffGroupedChildren(Mutated, false)
	require.Len(t, groups, 1)
	require.Equal(t, []string{"A"}, groups[0].Nodes)

	dest := newMemTree()
	dest.setChildren("root", "B", "C", "D")

	destTracker := NewTracker[string](dest, dest, TrackerOptions{})
	require.NoError(t, destTracker.PatchGroupedChildren(groups))
	require.Equal(t, []string{"B", "C", "D", "A"}, dest.children["root"])
}

func TestTrackerClearIsIdempotent(t *testing.T) {
	tree := newMemTree()
	tree.setChildren("root", "A", "B")
	tracker := NewTracker[string](tree, tree, TrackerOptions{})

	require.NoError(t, tree.Remove("A"))
	require.NoError(t, tracker.RecordChildren("root", []string{"A"}, nil, NoneSibling[string](), HandleSibling("B")))

	tracker.Clear()
	require.False(t, tracker.Mutated(nil))
	tracker.Clear()
	require.False(t, tracker.Mutated(nil))
}
