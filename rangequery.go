package mutationtree

// rangequery.go implements the Range collaborator of spec §4.5/§6 and the
// coordinator's range-union algorithm. There is no ambient DOM to supply
// Range objects in this port, so the type is concrete rather than a
// caller-supplied interface (spec's Go-native expansion, §4).

// Range is a pair of boundary points robust to later tree mutations: each
// endpoint names a node and one of the four BoundaryFlag positions around
// it, rather than an index that mutation would invalidate.
type Range[H comparable] struct {
	present   bool
	startNode H
	startFlag BoundaryFlag
	endNode   H
	endFlag   BoundaryFlag
}

// NullRange returns the empty range.
func NullRange[H comparable]() Range[H] { return Range[H]{} }

// SelectNode returns the range spanning n entirely, from before its open
// boundary to after its close boundary.
func SelectNode[H comparable](n H) Range[H] {
	return Range[H]{present: true, startNode: n, startFlag: BeforeOpen, endNode: n, endFlag: AfterClose}
}

// IsNull reports whether the range has never been given an endpoint.
func (r Range[H]) IsNull() bool { return !r.present }

// SetStart returns a copy of r with its start endpoint set.
func (r Range[H]) SetStart(n H, flag BoundaryFlag) Range[H] {
	if !r.present {
		r.endNode, r.endFlag = n, flag
	}
	r.present = true
	r.startNode, r.startFlag = n, flag
	return r
}

// SetEnd returns a copy of r with its end endpoint set.
func (r Range[H]) SetEnd(n H, flag BoundaryFlag) Range[H] {
	if !r.present {
		r.startNode, r.startFlag = n, flag
	}
	r.present = true
	r.endNode, r.endFlag = n, flag
	return r
}

// Collapse returns a copy of r with both endpoints set to one of its
// current endpoints.
func (r Range[H]) Collapse(toStart bool) Range[H] {
	if toStart {
		r.endNode, r.endFlag = r.startNode, r.startFlag
	} else {
		r.startNode, r.startFlag = r.endNode, r.endFlag
	}
	return r
}

// Normalize re-expresses any endpoint anchored at a currently-floating
// node's own sibling boundary (BeforeOpen/AfterClose) via the nearest
// fixed neighbor instead, per spec P7(b): a range's endpoints must not
// themselves be mutated nodes. Each endpoint moves outward past the run of
// floating siblings: when the adjacent sibling is fixed the point in space
// is unchanged and only the handle naming it moves; otherwise the range
// grows to cover the floating siblings that were skipped. Endpoints
// anchored inside a node (AfterOpen/BeforeClose of a parent) are left as
// is — isFloating reports a node's own sibling position, not anything
// about boundaries among its children.
func (r Range[H]) Normalize(tree LiveTree[H], isFloating func(H) bool) Range[H] {
	if !r.present {
		return r
	}
	r.startNode, r.startFlag = excludeFloating(tree, isFloating, r.startNode, r.startFlag, false)
	r.endNode, r.endFlag = excludeFloating(tree, isFloating, r.endNode, r.endFlag, true)
	return r
}

// excludeFloating walks outward from a BeforeOpen/AfterClose anchor that
// names a floating node, skipping the contiguous run of floating siblings
// in the direction away from the range's interior, until it reaches a
// fixed sibling or the end of the sibling list. forward is true for an
// end-side anchor (walk toward later siblings) and false for a start-side
// anchor (walk toward earlier siblings).
func excludeFloating[H comparable](tree LiveTree[H], isFloating func(H) bool, node H, flag BoundaryFlag, forward bool) (H, BoundaryFlag) {
	if (flag != BeforeOpen && flag != AfterClose) || !isFloating(node) {
		return node, flag
	}
	cur := node
	for {
		var s Sibling[H]
		var ok bool
		if forward {
			s, ok = tree.NextSibling(cur)
		} else {
			s, ok = tree.PrevSibling(cur)
		}
		if !ok {
			return node, flag
		}
		if s.IsNone() {
			p, ok := tree.Parent(cur)
			if !ok {
				return node, flag
			}
			if forward {
				return p, BeforeClose
			}
			return p, AfterOpen
		}
		h, isHandle := s.Handle()
		if !isHandle {
			return node, flag
		}
		if !isFloating(h) {
			if forward {
				return h, BeforeOpen
			}
			return h, AfterClose
		}
		cur = h
	}
}

// Extend returns the union of r and other, using tree to order boundary
// points that do not share a node.
func (r Range[H]) Extend(tree LiveTree[H], other Range[H]) Range[H] {
	if other.IsNull() {
		return r
	}
	if r.IsNull() {
		return other
	}
	out := r
	if comparePoints(tree, other.startNode, other.startFlag, out.startNode, out.startFlag) < 0 {
		out.startNode, out.startFlag = other.startNode, other.startFlag
	}
	if comparePoints(tree, other.endNode, other.endFlag, out.endNode, out.endFlag) > 0 {
		out.endNode, out.endFlag = other.endNode, other.endFlag
	}
	return out
}

// ancestorChain returns h and each of its ancestors, nearest first.
func ancestorChain[H comparable](tree LiveTree[H], h H) []H {
	chain := []H{h}
	cur := h
	for {
		p, ok := tree.Parent(cur)
		if !ok {
			return chain
		}
		chain = append(chain, p)
		cur = p
	}
}

// precedesSibling reports whether a occurs before b when walking a's
// next-siblings, under the assumption that a and b share a parent.
func precedesSibling[H comparable](tree LiveTree[H], a, b H) bool {
	cur := a
	for {
		s, ok := tree.NextSibling(cur)
		if !ok {
			return false
		}
		h, isHandle := s.Handle()
		if !isHandle {
			return false
		}
		if h == b {
			return true
		}
		cur = h
	}
}

// comparePoints orders two boundary points. It returns 0 for points in
// disconnected trees, since no order is defined; callers that need to
// detect that case should check roots separately (see RangeOf's ambiguous
// range check).
func comparePoints[H comparable](tree LiveTree[H], aNode H, aFlag BoundaryFlag, bNode H, bFlag BoundaryFlag) int {
	if aNode == bNode {
		return int(aFlag) - int(bFlag)
	}
	aChain := ancestorChain(tree, aNode)
	bChain := ancestorChain(tree, bNode)
	for i := 0; i < len(aChain); i++ {
		for j := 0; j < len(bChain); j++ {
			if aChain[i] != bChain[j] {
				continue
			}
			switch {
			case i == 0:
				// aNode is an ancestor of bNode (or equal, excluded above).
				if aFlag == BeforeOpen || aFlag == AfterOpen {
					return -1
				}
				return 1
			case j == 0:
				if bFlag == BeforeOpen || bFlag == AfterOpen {
					return 1
				}
				return -1
			default:
				if precedesSibling(tree, aChain[i-1], bChain[j-1]) {
					return -1
				}
				return 1
			}
		}
	}
	return 0
}

// rootOf walks h's parent chain to its topmost ancestor.
func rootOf[H comparable](tree LiveTree[H], h H) H {
	cur := h
	for {
		p, ok := tree.Parent(cur)
		if !ok {
			return cur
		}
		cur = p
	}
}

// isFixedAnchor reports whether s denotes a usable anchor for the
// original-side range contribution: None, or a handle that is currently
// not floating (the engine has no record for it).
func (t *Tracker[H]) isFixedAnchor(s Sibling[H]) bool {
	if s.IsNone() {
		return true
	}
	h, ok := s.Handle()
	if !ok {
		return false
	}
	_, floating := t.engine.Get(h)
	return !floating
}

// RangeOf computes the inclusive outer bounds of all current deltas, per
// spec §4.5. If root is nil and the deltas span more than one disconnected
// tree, it returns ErrAmbiguousRange. If there are no deltas at all, or
// none within root, it returns the null range with no error.
func (t *Tracker[H]) RangeOf(root *H) (Range[H], error) {
	if t.tree == nil {
		return NullRange[H](), ErrNilLiveTree
	}

	var discoveredRoot H
	haveDiscoveredRoot := false
	checkRoot := func(h H) error {
		if root != nil {
			return nil
		}
		r := rootOf[H](t.tree, h)
		if !haveDiscoveredRoot {
			discoveredRoot, haveDiscoveredRoot = r, true
			return nil
		}
		if r != discoveredRoot {
			return ErrAmbiguousRange
		}
		return nil
	}
	insideRoot := func(h H) bool {
		if root == nil {
			return true
		}
		cur := h
		for {
			if cur == *root {
				return true
			}
			p, ok := t.tree.Parent(cur)
			if !ok {
				return false
			}
			cur = p
		}
	}

	fr := NullRange[H]()

	dirtyPropertyNode := make(map[H]bool)
	for _, node := range t.properties.dirtyNodes() {
		if !insideRoot(node) {
			continue
		}
		if err := checkRoot(node); err != nil {
			return NullRange[H](), err
		}
		dirtyPropertyNode[node] = true
		fr = fr.Extend(t.tree, SelectNode(node))
	}

	for _, mn := range t.engine.records {
		if parent, ok := t.tree.Parent(mn.handle); ok && insideRoot(parent) && !dirtyPropertyNode[mn.handle] {
			if err := checkRoot(parent); err != nil {
				return NullRange[H](), err
			}
			fr = fr.Extend(t.tree, SelectNode(mn.handle))
		}
		if !mn.original.IsAbsent() {
			p, _ := mn.original.Parent()
			if !insideRoot(p) {
				continue
			}
			if err := checkRoot(p); err != nil {
				return NullRange[H](), err
			}
			prevFixed := (mn.original.prev.IsHandle() || mn.original.prev.IsNone()) && t.isFixedAnchor(mn.original.prev)
			nextFixed := (mn.original.next.IsHandle() || mn.original.next.IsNone()) && t.isFixedAnchor(mn.original.next)
			if !prevFixed && !nextFixed {
				continue
			}
			var sr Range[H]
			if prevFixed {
				if h, ok := mn.original.prev.Handle(); ok {
					sr = sr.SetStart(h, AfterClose)
				} else {
					sr = sr.SetStart(p, AfterOpen)
				}
			}
			if nextFixed {
				if h, ok := mn.original.next.Handle(); ok {
					sr = sr.SetEnd(h, BeforeOpen)
				} else {
					sr = sr.SetEnd(p, BeforeClose)
				}
			}
			if prevFixed && !nextFixed {
				sr = sr.Collapse(true)
			} else if nextFixed && !prevFixed {
				sr = sr.Collapse(false)
			}
			fr = fr.Extend(t.tree, sr)
		}
	}

	if fr.IsNull() {
		return fr, nil
	}
	isFloating := func(h H) bool {
		_, floating := t.engine.Get(h)
		return floating
	}
	return fr.Normalize(t.tree, isFloating), nil
}
