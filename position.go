package mutationtree

// Dir names a direction along a child list.
type Dir uint8

const (
	// DirPrev is the direction toward the previous sibling.
	DirPrev Dir = iota
	// DirNext is the direction toward the next sibling.
	DirNext
)

// Other returns the opposite direction.
func (d Dir) Other() Dir {
	if d == DirPrev {
		return DirNext
	}
	return DirPrev
}

func (d Dir) String() string {
	if d == DirPrev {
		return "prev"
	}
	return "next"
}

// BoundaryFlag names one of the four boundary positions around a node,
// used by Range. See spec §6.
type BoundaryFlag uint8

const (
	BeforeOpen BoundaryFlag = iota
	AfterOpen
	BeforeClose
	AfterClose
)

type siblingKind uint8

const (
	// skNone marks a list boundary (no sibling on this side).
	skNone siblingKind = iota
	// skHandle holds a concrete node handle.
	skHandle
	// skUnknown means the engine has never been told what this sibling is.
	skUnknown
	// skPromise means resolution of this sibling has been deferred to a
	// SiblingPromise, looked up by id in the owning engine's promise table.
	skPromise
)

// Sibling is one of: a handle, None (list boundary), Unknown, or a
// deferred SiblingPromise (referenced by id). It is a small value type,
// safe to copy, per the "promise as tagged union" design note (spec §9):
// the promise itself lives in a side table, not inline here.
type Sibling[H comparable] struct {
	kind siblingKind
	h    H
	pid  promiseID
}

// NoneSibling returns the boundary-of-child-list sibling value.
func NoneSibling[H comparable]() Sibling[H] {
	return Sibling[H]{kind: skNone}
}

// UnknownSibling returns the "never been told" sibling value.
func UnknownSibling[H comparable]() Sibling[H] {
	return Sibling[H]{kind: skUnknown}
}

// HandleSibling wraps a concrete node handle as a sibling value.
func HandleSibling[H comparable](h H) Sibling[H] {
	return Sibling[H]{kind: skHandle, h: h}
}

func promiseSiblingValue[H comparable](id promiseID) Sibling[H] {
	return Sibling[H]{kind: skPromise, pid: id}
}

// IsNone reports whether s is the list-boundary value.
func (s Sibling[H]) IsNone() bool { return s.kind == skNone }

// IsHandle reports whether s wraps a concrete handle.
func (s Sibling[H]) IsHandle() bool { return s.kind == skHandle }

// IsUnknown reports whether s is the "never observed" placeholder.
func (s Sibling[H]) IsUnknown() bool { return s.kind == skUnknown }

// IsPromise reports whether s defers to a placed SiblingPromise.
func (s Sibling[H]) IsPromise() bool { return s.kind == skPromise }

// Handle returns the wrapped handle and true if s is a handle sibling.
func (s Sibling[H]) Handle() (H, bool) {
	if s.kind == skHandle {
		return s.h, true
	}
	var zero H
	return zero, false
}

// Position is one of: Absent, Known (parent + fully-resolved prev/next),
// or Partial (parent known, one or both siblings Unknown/promised).
type Position[H comparable] struct {
	present bool
	parent  H
	prev    Sibling[H]
	next    Sibling[H]
}

// AbsentPosition returns the absent position value.
func AbsentPosition[H comparable]() Position[H] {
	return Position[H]{}
}

// PresentPosition returns a position with a known parent and the given
// sides. The sides may themselves be Unknown or a promise, in which case
// the resulting position is Partial rather than fully Known.
func PresentPosition[H comparable](parent H, prev, next Sibling[H]) Position[H] {
	return Position[H]{present: true, parent: parent, prev: prev, next: next}
}

// IsAbsent reports whether the position carries no parent at all.
func (p Position[H]) IsAbsent() bool { return !p.present }

// IsPartial reports whether the position has a known parent but at least
// one side is Unknown or deferred to a promise.
func (p Position[H]) IsPartial() bool {
	return p.present && (p.prev.kind == skUnknown || p.prev.kind == skPromise ||
		p.next.kind == skUnknown || p.next.kind == skPromise)
}

// IsKnown reports whether the position is present and fully resolved.
func (p Position[H]) IsKnown() bool { return p.present && !p.IsPartial() }

// Parent returns the position's parent handle and true if present.
func (p Position[H]) Parent() (H, bool) {
	return p.parent, p.present
}

// Prev returns the prev-side sibling. Only meaningful when present.
func (p Position[H]) Prev() Sibling[H] { return p.prev }

// Next returns the next-side sibling. Only meaningful when present.
func (p Position[H]) Next() Sibling[H] { return p.next }

// Side returns the sibling on the given side.
func (p Position[H]) Side(d Dir) Sibling[H] {
	if d == DirPrev {
		return p.prev
	}
	return p.next
}

// withSide returns a copy of p with the given side replaced.
func (p Position[H]) withSide(d Dir, s Sibling[H]) Position[H] {
	if d == DirPrev {
		p.prev = s
	} else {
		p.next = s
	}
	return p
}
