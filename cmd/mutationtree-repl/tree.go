package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nodeledger/mutationtree"
)

// demoNode is one node of the tiny in-memory tree the repl demo mutates.
type demoNode struct {
	id       uuid.UUID
	parent   uuid.UUID
	hasParent bool
	children []uuid.UUID
	attrs    map[string]string
	data     string
}

// demoTree is a minimal in-memory hierarchical tree satisfying both
// mutationtree.LiveTree and mutationtree.TreeMutator over uuid.UUID
// handles, standing in for the real DOM-like tree a production caller
// would observe.
type demoTree struct {
	nodes map[uuid.UUID]*demoNode
}

func newDemoTree() *demoTree {
	return &demoTree{nodes: make(map[uuid.UUID]*demoNode)}
}

func (t *demoTree) newNode() uuid.UUID {
	id := uuid.New()
	t.nodes[id] = &demoNode{id: id, attrs: make(map[string]string)}
	return id
}

func (t *demoTree) Parent(h uuid.UUID) (uuid.UUID, bool) {
	n, ok := t.nodes[h]
	if !ok || !n.hasParent {
		return uuid.UUID{}, false
	}
	return n.parent, true
}

func (t *demoTree) PrevSibling(h uuid.UUID) (mutationtree.Sibling[uuid.UUID], bool) {
	n, ok := t.nodes[h]
	if !ok || !n.hasParent {
		return mutationtree.Sibling[uuid.UUID]{}, false
	}
	siblings := t.nodes[n.parent].children
	for i, c := range siblings {
		if c == h {
			if i == 0 {
				return mutationtree.NoneSibling[uuid.UUID](), true
			}
			return mutationtree.HandleSibling(siblings[i-1]), true
		}
	}
	return mutationtree.Sibling[uuid.UUID]{}, false
}

func (t *demoTree) NextSibling(h uuid.UUID) (mutationtree.Sibling[uuid.UUID], bool) {
	n, ok := t.nodes[h]
	if !ok || !n.hasParent {
		return mutationtree.Sibling[uuid.UUID]{}, false
	}
	siblings := t.nodes[n.parent].children
	for i, c := range siblings {
		if c == h {
			if i == len(siblings)-1 {
				return mutationtree.NoneSibling[uuid.UUID](), true
			}
			return mutationtree.HandleSibling(siblings[i+1]), true
		}
	}
	return mutationtree.Sibling[uuid.UUID]{}, false
}

func (t *demoTree) AttributeValue(h uuid.UUID, key string) (string, bool) {
	n, ok := t.nodes[h]
	if !ok {
		return "", false
	}
	v, ok := n.attrs[key]
	return v, ok
}

func (t *demoTree) CharacterData(h uuid.UUID) (string, bool) {
	n, ok := t.nodes[h]
	if !ok {
		return "", false
	}
	return n.data, true
}

func (t *demoTree) Remove(h uuid.UUID) error {
	n, ok := t.nodes[h]
	if !ok || !n.hasParent {
		return nil
	}
	parent := t.nodes[n.parent]
	for i, c := range parent.children {
		if c == h {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	n.hasParent = false
	return nil
}

func (t *demoTree) InsertBefore(ref uuid.UUID, nodes ...uuid.UUID) error {
	refNode, ok := t.nodes[ref]
	if !ok || !refNode.hasParent {
		return fmt.Errorf("demoTree: InsertBefore: %s has no parent", ref)
	}
	parent := t.nodes[refNode.parent]
	idx := -1
	for i, c := range parent.children {
		if c == ref {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("demoTree: InsertBefore: %s not found under its parent", ref)
	}
	for _, n := range nodes {
		t.detachIfAttached(n)
	}
	tail := append([]uuid.UUID{}, parent.children[idx:]...)
	parent.children = append(parent.children[:idx], nodes...)
	parent.children = append(parent.children, tail...)
	for _, n := range nodes {
		t.nodes[n].parent = refNode.parent
		t.nodes[n].hasParent = true
	}
	return nil
}

func (t *demoTree) Append(parent uuid.UUID, nodes ...uuid.UUID) error {
	for _, n := range nodes {
		t.detachIfAttached(n)
	}
	p := t.nodes[parent]
	p.children = append(p.children, nodes...)
	for _, n := range nodes {
		t.nodes[n].parent = parent
		t.nodes[n].hasParent = true
	}
	return nil
}

func (t *demoTree) Prepend(parent uuid.UUID, nodes ...uuid.UUID) error {
	for _, n := range nodes {
		t.detachIfAttached(n)
	}
	p := t.nodes[parent]
	p.children = append(append([]uuid.UUID{}, nodes...), p.children...)
	for _, n := range nodes {
		t.nodes[n].parent = parent
		t.nodes[n].hasParent = true
	}
	return nil
}

func (t *demoTree) detachIfAttached(h uuid.UUID) {
	if n, ok := t.nodes[h]; ok && n.hasParent {
		_ = t.Remove(h)
	}
}

func (t *demoTree) SetAttribute(h uuid.UUID, key, value string) error {
	t.nodes[h].attrs[key] = value
	return nil
}

func (t *demoTree) RemoveAttribute(h uuid.UUID, key string) error {
	delete(t.nodes[h].attrs, key)
	return nil
}

func (t *demoTree) SetCharacterData(h uuid.UUID, value string) error {
	t.nodes[h].data = value
	return nil
}
