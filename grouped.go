package mutationtree

// ChildGroup is one contiguous run of floating nodes sharing the same
// dimension-parent, as yielded by Tracker.DiffGroupedChildren (spec
// §4.6). Prev/Next encode the same four Sibling states the engine itself
// uses: None (list boundary), a handle (fixed anchor), or Unknown/Promise
// meaning the endpoint never became known and patching must skip it.
type ChildGroup[H comparable] struct {
	Nodes   []H
	Parent  H
	Removed bool
	Prev    Sibling[H]
	Next    Sibling[H]
}

// DiffGroupedChildren yields the floating nodes of the given dimension
// grouped into maximal contiguous runs. When includeRemoved is true, every
// node whose position in mode is absent is collected into one trailing
// group with Removed set.
func (t *Tracker[H]) DiffGroupedChildren(mode Dimension, includeRemoved bool) []ChildGroup[H] {
	posOf := func(mn *mutatedNode[H]) Position[H] {
		if mode == Original {
			return mn.original
		}
		return mn.mutated
	}

	visited := make(map[H]bool, len(t.engine.records))
	var groups []ChildGroup[H]
	var removedNodes []H

	for h, mn := range t.engine.records {
		if visited[h] {
			continue
		}
		pos := posOf(mn)
		if pos.IsAbsent() {
			visited[h] = true
			if includeRemoved {
				removedNodes = append(removedNodes, h)
			}
			continue
		}
		visited[h] = true
		parent, _ := pos.Parent()
		nodes := []H{h}

		start := pos.prev
		for {
			hh, isHandle := start.Handle()
			if !isHandle || visited[hh] {
				break
			}
			nb, exists := t.engine.records[hh]
			if !exists {
				break
			}
			nodes = append([]H{hh}, nodes...)
			visited[hh] = true
			start = posOf(nb).prev
		}

		end := pos.next
		for {
			hh, isHandle := end.Handle()
			if !isHandle || visited[hh] {
				break
			}
			nb, exists := t.engine.records[hh]
			if !exists {
				break
			}
			nodes = append(nodes, hh)
			visited[hh] = true
			end = posOf(nb).next
		}

		groups = append(groups, ChildGroup[H]{Nodes: nodes, Parent: parent, Prev: start, Next: end})
	}

	if includeRemoved && len(removedNodes) > 0 {
		groups = append(groups, ChildGroup[H]{Nodes: removedNodes, Removed: true})
	}
	return groups
}

// PatchGroupedChildren applies groups to tree: every node in every group
// is detached first, then each group is re-inserted at its recorded
// boundary. Detach-then-insert avoids ordering hazards when a node has
// migrated between an ancestor and one of its own descendants. A group
// lacking both Prev and Next (an untracked insertion whose siblings never
// became known) is skipped and logged via warn, per spec §4.7/§7.
func (t *Tracker[H]) PatchGroupedChildren(groups []ChildGroup[H]) error {
	if t.mutator == nil {
		return ErrNilTreeMutator
	}
	for _, g := range groups {
		if g.Removed {
			continue
		}
		for _, n := range g.Nodes {
			if err := t.mutator.Remove(n); err != nil {
				return err
			}
		}
	}
	for _, g := range groups {
		if g.Removed {
			for _, n := range g.Nodes {
				if err := t.mutator.Remove(n); err != nil {
					return err
				}
			}
			continue
		}
		if err := t.insertGroup(g); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker[H]) insertGroup(g ChildGroup[H]) error {
	if nextH, ok := g.Next.Handle(); ok {
		return t.mutator.InsertBefore(nextH, g.Nodes...)
	}
	if g.Next.IsNone() {
		return t.mutator.Append(g.Parent, g.Nodes...)
	}
	if prevH, ok := g.Prev.Handle(); ok {
		if t.tree != nil {
			if s, ok := t.tree.NextSibling(prevH); ok {
				if sh, isHandle := s.Handle(); isHandle {
					return t.mutator.InsertBefore(sh, g.Nodes...)
				}
			}
		}
		return t.mutator.Append(g.Parent, g.Nodes...)
	}
	if g.Prev.IsNone() {
		return t.mutator.Prepend(g.Parent, g.Nodes...)
	}
	t.warnUnpatchableGroup(g)
	return nil
}
