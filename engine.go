package mutationtree

// engine is the child-list mutation graph: it accepts batched,
// out-of-order child-list mutation reports and maintains the invariant
// that a handle has a mutatedNode record if and only if its current
// position differs from its original position (spec §3, invariant I1).
type engine[H comparable] struct {
	records map[H]*mutatedNode[H]
	origIx  *dimIndex[H]
	mutIx   *dimIndex[H]
	promises *promiseTable[H]

	// onReverted, if set, is called whenever a node transitions to
	// fixed during this engine's bookkeeping. Used to wire the metrics
	// hook (metrics.go) without the engine depending on prometheus.
	onReverted func(h H)

	// pendingResolved tracks, for the duration of a single mutation()
	// call, every MN whose original position was written to by
	// resolveOrigin, so Step 5 can collect the "resolved" candidate
	// group (spec §4.3 step 1: "Maintain a set resolved...").
	pendingResolved map[H]*mutatedNode[H]
}

func newEngine[H comparable]() *engine[H] {
	return &engine[H]{
		records:  make(map[H]*mutatedNode[H]),
		origIx:   newDimIndex[H](),
		mutIx:    newDimIndex[H](),
		promises: newPromiseTable[H](),
	}
}

// Len reports the number of currently floating (tracked) nodes.
func (e *engine[H]) Len() int { return len(e.records) }

// IsEmpty reports whether no node is currently floating.
func (e *engine[H]) IsEmpty() bool { return len(e.records) == 0 }

// Get returns the record for h, if any.
func (e *engine[H]) Get(h H) (*mutatedNode[H], bool) {
	mn, ok := e.records[h]
	return mn, ok
}

// handleMN resolves a Sibling value to its record, if it wraps a handle
// that is currently floating. isHandle is false for None/Unknown/promise
// values; mn is nil when the handle is fixed (untracked).
func (e *engine[H]) handleMN(s Sibling[H]) (mn *mutatedNode[H], isHandle bool) {
	h, ok := s.Handle()
	if !ok {
		return nil, false
	}
	return e.records[h], true
}

func anchorEquals[H comparable](a, b Sibling[H]) bool {
	if a.IsNone() && b.IsNone() {
		return true
	}
	ha, oka := a.Handle()
	hb, okb := b.Handle()
	return oka && okb && ha == hb
}

// resolveOrigin writes v into mn.original's dir side and records mn in
// the pendingResolved set for this mutation() call.
func (e *engine[H]) resolveOrigin(mn *mutatedNode[H], dir Dir, v Sibling[H]) {
	mn.original = mn.original.withSide(dir, v)
	if mn.original.prev.IsHandle() || mn.original.prev.IsNone() {
		if mn.original.next.IsHandle() || mn.original.next.IsNone() {
			if e.pendingResolved != nil {
				e.pendingResolved[mn.handle] = mn
			}
		}
	}
}

// search resolves originMN's original[dir] by walking forward from cur
// through contiguous floating nodes (tracked via their *mutated* side-dir
// neighbor) until it hits a fixed handle, a list boundary, or an
// already-Unknown frontier, per spec §4.3 step 1's "resuming" behavior.
// If it must stop at an Unknown frontier, it places a new promise there
// and returns it; otherwise it resolves originMN directly and returns nil.
func (e *engine[H]) search(originMN *mutatedNode[H], dir Dir, cur Sibling[H]) *sibPromise[H] {
	for {
		if cur.IsNone() {
			e.resolveOrigin(originMN, dir, cur)
			return nil
		}
		h, _ := cur.Handle()
		mn2, exists := e.records[h]
		if !exists {
			e.resolveOrigin(originMN, dir, cur)
			return nil
		}
		next := mn2.mutated.Side(dir)
		switch {
		case next.IsUnknown():
			return e.promises.place(originMN, mn2, dir)
		case next.IsPromise():
			sp2 := e.promises.promiseAt(next)
			e.resolveOrigin(originMN, dir, HandleSibling[H](sp2.origin.handle))
			e.resolveOrigin(sp2.origin, sp2.dir, HandleSibling[H](originMN.handle))
			e.promises.discard(sp2)
			return nil
		default:
			cur = next
		}
	}
}

// continueSearch is called when new information (fact) becomes available
// about what currently sits at sp's frontier, replacing the Unknown that
// justified sp's placement there. It discards sp and resumes the search
// for sp.origin from fact.
func (e *engine[H]) continueSearch(sp *sibPromise[H], fact Sibling[H]) {
	e.promises.discard(sp)
	e.search(sp.origin, sp.dir, fact)
}

// destroy removes mn from the records map and both sibling indices
// (invariant I5) and handles any promise it is involved in: a promise
// whose origin is mn is discarded, since the node
// is no longer floating; a promise parked at mn as a frontier (in
// mutated.prev/next) is handed a continuation fact and resumed, so the
// waiting origin's search is not stranded.
func (e *engine[H]) destroy(mn *mutatedNode[H]) {
	delete(e.records, mn.handle)
	e.origIx.unindexAll(mn, mn.original)
	e.mutIx.unindexAll(mn, mn.mutated)

	for _, sp := range e.promises.promises {
		if sp.origin == mn {
			e.promises.discard(sp)
		}
	}

	factFor := func(dir Dir) Sibling[H] {
		if !mn.original.IsAbsent() {
			return mn.original.Side(dir)
		}
		return mn.mutated.Side(dir)
	}
	if sp := e.promises.promiseAt(mn.mutated.prev); sp != nil {
		e.continueSearch(sp, factFor(DirPrev))
	}
	if sp := e.promises.promiseAt(mn.mutated.next); sp != nil {
		e.continueSearch(sp, factFor(DirNext))
	}
}

// markFixed destroys mn (it has just reverted to its original position)
// and fires the reversion hook.
func (e *engine[H]) markFixed(mn *mutatedNode[H]) {
	e.destroy(mn)
	if e.onReverted != nil {
		e.onReverted(mn.handle)
	}
}

// Mutation records a batched child-list report: at some point in time,
// inside parent, the contiguous sequence of children was
// [prev, removed..., next], and is now [prev, added..., next]. prev/next
// are None at a list boundary. This is the `record_children` operation
// of spec §4.1, implementing the six-step pipeline of spec §4.3.
func (e *engine[H]) Mutation(parent H, removed, added []H, prev, next Sibling[H]) {
	e.pendingResolved = make(map[H]*mutatedNode[H])
	defer func() { e.pendingResolved = nil }()
	for _, mn := range e.records {
		mn.leftDead, mn.rightDead = false, false
	}

	// Step 1: promise resolution within the reported neighborhood.
	walk := make([]Sibling[H], 0, len(removed)+2)
	walk = append(walk, prev)
	for _, h := range removed {
		walk = append(walk, HandleSibling(h))
	}
	walk = append(walk, next)
	for i := 0; i+1 < len(walk); i++ {
		e.resolveAdjacent(walk[i], walk[i+1])
	}
	if len(removed) > 0 {
		if headMN, ok := e.records[removed[0]]; ok {
			if sp := e.promises.promiseAt(headMN.mutated.prev); sp != nil {
				e.continueSearch(sp, prev)
			}
		}
		if tailMN, ok := e.records[removed[len(removed)-1]]; ok {
			if sp := e.promises.promiseAt(tailMN.mutated.next); sp != nil {
				e.continueSearch(sp, next)
			}
		}
	}

	// Step 2: process removals.
	var fixedNew []*mutatedNode[H]
	revertPossible := false
	for _, h := range removed {
		mn, exists := e.records[h]
		if exists {
			e.mutIx.unindexAll(mn, mn.mutated)
			if mn.original.IsAbsent() {
				e.destroy(mn)
			} else {
				mn.mutated = AbsentPosition[H]()
				if origParent, ok := mn.original.Parent(); ok && origParent == parent {
					revertPossible = true
				}
			}
		} else {
			mn = newMutatedNode[H](h)
			mn.original = PresentPosition(parent, UnknownSibling[H](), UnknownSibling[H]())
			e.records[h] = mn
			fixedNew = append(fixedNew, mn)
			revertPossible = true
		}
	}

	// Step 3: original siblings for newly-removed (previously fixed) nodes.
	if n := len(fixedNew); n > 0 {
		for i := 1; i < n; i++ {
			left, right := fixedNew[i-1], fixedNew[i]
			e.resolveOrigin(left, DirNext, HandleSibling[H](right.handle))
			e.origIx.indexSide(left, DirNext, left.original)
			e.resolveOrigin(right, DirPrev, HandleSibling[H](left.handle))
			e.origIx.indexSide(right, DirPrev, right.original)
		}
		first, last := fixedNew[0], fixedNew[n-1]
		if other, ok := e.origIx.lookup(DirNext, first.handle); ok {
			e.resolveOrigin(first, DirPrev, HandleSibling[H](other.handle))
		} else {
			e.search(first, DirPrev, prev)
		}
		e.origIx.indexSide(first, DirPrev, first.original)

		if other, ok := e.origIx.lookup(DirPrev, last.handle); ok {
			e.resolveOrigin(last, DirNext, HandleSibling[H](other.handle))
		} else {
			e.search(last, DirNext, next)
		}
		e.origIx.indexSide(last, DirNext, last.original)
	}

	// Step 4: process additions.
	prevMN, prevIsHandle := e.handleMN(prev)
	nextMN, nextIsHandle := e.handleMN(next)
	firstAdded := next
	if len(added) > 0 {
		firstAdded = HandleSibling(added[0])
	}
	lastAdded := prev
	if len(added) > 0 {
		lastAdded = HandleSibling(added[len(added)-1])
	}
	if prevIsHandle && prevMN != nil {
		e.mutIx.unindexSide(prevMN, DirNext, prevMN.mutated)
		prevMN.mutated = prevMN.mutated.withSide(DirNext, firstAdded)
		e.mutIx.indexSide(prevMN, DirNext, prevMN.mutated)
	}
	if nextIsHandle && nextMN != nil {
		e.mutIx.unindexSide(nextMN, DirPrev, nextMN.mutated)
		nextMN.mutated = nextMN.mutated.withSide(DirPrev, lastAdded)
		e.mutIx.indexSide(nextMN, DirPrev, nextMN.mutated)
	}

	var candidates []*mutatedNode[H]
	for i, h := range added {
		mn, exists := e.records[h]
		if !exists {
			mn = newMutatedNode[H](h)
			e.records[h] = mn
		} else if origParent, ok := mn.original.Parent(); ok && origParent == parent {
			candidates = append(candidates, mn)
		}

		var prevSide, nextSide Sibling[H]
		if i > 0 {
			prevSide = HandleSibling(added[i-1])
		} else {
			prevSide = prev
		}
		if i < len(added)-1 {
			nextSide = HandleSibling(added[i+1])
		} else {
			nextSide = next
		}
		e.mutIx.unindexAll(mn, mn.mutated)
		mn.mutated = PresentPosition(parent, prevSide, nextSide)
		e.mutIx.indexAll(mn, mn.mutated)
	}

	// Step 5: reversion propagation.
	if len(candidates) > 0 {
		e.reversionCheck(candidates)
	}
	if revertPossible {
		var seeds []*mutatedNode[H]
		for _, h := range removed {
			if mn, ok := e.records[h]; ok {
				seeds = append(seeds, mn)
			}
		}
		if pmn, _ := e.handleMN(prev); pmn != nil {
			seeds = append(seeds, pmn)
		}
		if nmn, _ := e.handleMN(next); nmn != nil {
			seeds = append(seeds, nmn)
		}
		e.reversionCheck(seeds)
	}
	for h, mn := range e.pendingResolved {
		if origParent, ok := mn.original.Parent(); ok && origParent == parent {
			if _, stillTracked := e.records[h]; stillTracked {
				e.reversionCheck([]*mutatedNode[H]{mn})
			}
		}
	}
}

// isFixed reports whether mn's mutated position now exactly matches its
// original position: same parent, and both sides equal (a side that is
// still Unknown or a live promise on the original side means "not yet
// known to be fixed", not "fixed").
func (e *engine[H]) isFixed(mn *mutatedNode[H]) bool {
	mp, mok := mn.mutated.Parent()
	op, ook := mn.original.Parent()
	if !mok || !ook || mp != op {
		return false
	}
	if mn.original.IsPartial() {
		return false
	}
	return anchorEquals(mn.mutated.prev, mn.original.prev) &&
		anchorEquals(mn.mutated.next, mn.original.next)
}

// propagateOutward returns the floating neighbors of mn on its mutated
// sides, the candidates whose own fixedness may now be affected by mn
// leaving the child list (spec §4.3 step 5: reversion can ripple outward
// past the originally reported span).
func (e *engine[H]) propagateOutward(mn *mutatedNode[H]) []*mutatedNode[H] {
	var out []*mutatedNode[H]
	if pmn, _ := e.handleMN(mn.mutated.prev); pmn != nil {
		out = append(out, pmn)
	}
	if nmn, _ := e.handleMN(mn.mutated.next); nmn != nil {
		out = append(out, nmn)
	}
	return out
}

// reversionCheck drains a worklist of candidates that may have just
// become fixed, destroying each one that has and enqueueing its
// formerly-adjacent floating neighbors so the check ripples outward.
// Seeding candidates from a report's parent/prev/next is left to the
// caller; reversionCheck itself only ever looks at a candidate's own
// recorded positions.
func (e *engine[H]) reversionCheck(candidates []*mutatedNode[H]) {
	queue := append([]*mutatedNode[H]{}, candidates...)
	for len(queue) > 0 {
		mn := queue[0]
		queue = queue[1:]
		if _, stillTracked := e.records[mn.handle]; !stillTracked {
			continue
		}
		if mn.dead() {
			continue
		}
		if !e.isFixed(mn) {
			mn.markSideDead(DirPrev)
			mn.markSideDead(DirNext)
			continue
		}
		neighbors := e.propagateOutward(mn)
		e.markFixed(mn)
		queue = append(queue, neighbors...)
	}
}

// liveSide reads h's current side-d sibling from tree, treating a
// detached handle as a list boundary.
func (e *engine[H]) liveSide(tree LiveTree[H], h H, d Dir) Sibling[H] {
	var s Sibling[H]
	var ok bool
	if d == DirPrev {
		s, ok = tree.PrevSibling(h)
	} else {
		s, ok = tree.NextSibling(h)
	}
	if !ok {
		return NoneSibling[H]()
	}
	return s
}

// liveFixedSide walks h's side-d neighbors in the live tree, skipping
// over any contiguous run of still-floating nodes (nodes the engine still
// holds a record for), until it reaches a fixed sibling or None. This is
// spec §4.4 step 3's resolution walk: a promise or Unknown original side
// waiting on this frontier must resolve to the first anchor the live tree
// actually agrees is settled, not to whatever handle happens to sit
// immediately next to h.
func (e *engine[H]) liveFixedSide(tree LiveTree[H], h H, d Dir) Sibling[H] {
	cur := h
	for {
		s := e.liveSide(tree, cur, d)
		if s.IsNone() {
			return s
		}
		nh, ok := s.Handle()
		if !ok {
			return s
		}
		if _, floating := e.Get(nh); !floating {
			return s
		}
		cur = nh
	}
}

// Synchronize is the one-shot finalization pass of spec §4.4: once the
// caller asserts no further mutation reports are coming, every
// outstanding promise and Unknown original side can be resolved
// directly against the live tree's current structure, since by
// construction nothing will ever contradict it again. Afterward it
// re-runs the reversion check over every remaining record, since
// resolving an original side can newly reveal a node as fixed.
func (e *engine[H]) Synchronize(tree LiveTree[H]) {
	for _, sp := range e.promises.promises {
		fact := e.liveFixedSide(tree, sp.ptr.handle, sp.dir)
		e.promises.resolve(sp, fact)
		sp.ptr.mutated = sp.ptr.mutated.withSide(sp.dir, e.liveSide(tree, sp.ptr.handle, sp.dir))
		e.mutIx.indexSide(sp.ptr, sp.dir, sp.ptr.mutated)
	}
	for _, mn := range e.records {
		if mn.original.prev.IsUnknown() {
			mn.original = mn.original.withSide(DirPrev, e.liveFixedSide(tree, mn.handle, DirPrev))
		}
		if mn.original.next.IsUnknown() {
			mn.original = mn.original.withSide(DirNext, e.liveFixedSide(tree, mn.handle, DirNext))
		}
	}
	all := make([]*mutatedNode[H], 0, len(e.records))
	for _, mn := range e.records {
		mn.leftDead, mn.rightDead = false, false
		all = append(all, mn)
	}
	e.reversionCheck(all)
}

// resolveAdjacent applies the "literal old mutated-adjacency" fact that,
// at report time, left and right were directly adjacent, to any promise
// parked at left's mutated.next or right's mutated.prev (spec §4.3 step
// 1's four resolution shapes).
func (e *engine[H]) resolveAdjacent(left, right Sibling[H]) {
	leftMN, leftIsHandle := e.handleMN(left)
	rightMN, rightIsHandle := e.handleMN(right)

	var spL, spR *sibPromise[H]
	if leftIsHandle && leftMN != nil {
		spL = e.promises.promiseAt(leftMN.mutated.next)
	}
	if rightIsHandle && rightMN != nil {
		spR = e.promises.promiseAt(rightMN.mutated.prev)
	}

	switch {
	case spL != nil && spR != nil:
		if spL != spR {
			e.resolveOrigin(spL.origin, spL.dir, HandleSibling[H](spR.origin.handle))
			e.resolveOrigin(spR.origin, spR.dir, HandleSibling[H](spL.origin.handle))
			e.promises.discard(spL)
			e.promises.discard(spR)
		}
	case spL != nil:
		e.continueSearch(spL, right)
	case spR != nil:
		e.continueSearch(spR, left)
	}
}
