package mutationtree

import "fmt"

// selfCheck cross-validates invariants I1-I5 (spec §4.3 step 6). It is
// expensive (linear in the number of records) and only run when
// TrackerOptions.DebugSelfCheck is set.
func (t *Tracker[H]) selfCheck() error {
	e := t.engine

	for h, mn := range e.records {
		if mn.handle != h {
			return fmt.Errorf("%w: record keyed %v holds handle %v", ErrInvariantViolation, h, mn.handle)
		}
		// I1: a record implies floating (original and mutated differ, or
		// at least one side is not yet resolved enough to tell).
		if e.isFixed(mn) {
			return fmt.Errorf("%w: record for %v is fixed but was not pruned", ErrInvariantViolation, h)
		}

		// I2: sibling indices agree with stored positions.
		if hh, ok := mn.original.prev.Handle(); ok {
			if got, exists := e.origIx.lookup(DirPrev, hh); !exists || got != mn {
				return fmt.Errorf("%w: original prev index mismatch for %v", ErrInvariantViolation, h)
			}
		}
		if hh, ok := mn.original.next.Handle(); ok {
			if got, exists := e.origIx.lookup(DirNext, hh); !exists || got != mn {
				return fmt.Errorf("%w: original next index mismatch for %v", ErrInvariantViolation, h)
			}
		}
		if hh, ok := mn.mutated.prev.Handle(); ok {
			if got, exists := e.mutIx.lookup(DirPrev, hh); !exists || got != mn {
				return fmt.Errorf("%w: mutated prev index mismatch for %v", ErrInvariantViolation, h)
			}
		}
		if hh, ok := mn.mutated.next.Handle(); ok {
			if got, exists := e.mutIx.lookup(DirNext, hh); !exists || got != mn {
				return fmt.Errorf("%w: mutated next index mismatch for %v", ErrInvariantViolation, h)
			}
		}
	}

	// I3/I4: every placed promise points at exactly one MN via its
	// mutated[dir] slot, and the origin is still floating.
	for id, sp := range e.promises.promises {
		if sp.id != id {
			return fmt.Errorf("%w: promise keyed %d has id %d", ErrInvariantViolation, id, sp.id)
		}
		slot := sp.ptr.mutated.Side(sp.dir)
		if !slot.IsPromise() || slot.pid != id {
			return fmt.Errorf("%w: promise %d's ptr does not reference it", ErrInvariantViolation, id)
		}
		if _, floating := e.records[sp.origin.handle]; !floating {
			return fmt.Errorf("%w: promise %d's origin %v is not floating", ErrInvariantViolation, id, sp.origin.handle)
		}
	}

	return nil
}
