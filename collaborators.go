package mutationtree

// LiveTree is the read-only collaborator the Tracker consults in
// Synchronize, RangeOf, Mutated's containment walk, and
// PatchGroupedChildren (spec §5, §6). RecordAttribute and RecordData do
// not read it: the current value is passed in by the caller. The
// caller's real DOM-like tree implements this; the engine never mutates
// through it.
type LiveTree[H comparable] interface {
	// Parent returns h's current parent and true, or the zero value and
	// false if h is currently detached (has no parent).
	Parent(h H) (H, bool)
	// PrevSibling returns h's current previous sibling (NoneSibling if h
	// is the first child) and true, or false if h is detached.
	PrevSibling(h H) (Sibling[H], bool)
	// NextSibling returns h's current next sibling (NoneSibling if h is
	// the last child) and true, or false if h is detached.
	NextSibling(h H) (Sibling[H], bool)
	// AttributeValue returns h's current value for a namespace-qualified
	// attribute key ("ns:name", or a bare name), and whether it is set.
	AttributeValue(h H, key string) (value string, ok bool)
	// CharacterData returns h's current character data.
	CharacterData(h H) (value string, ok bool)
}

// TreeMutator is the write collaborator invoked only during
// PatchGroupedChildren/Revert (spec §5, §6).
type TreeMutator[H comparable] interface {
	// Remove detaches h from its current parent.
	Remove(h H) error
	// InsertBefore inserts nodes immediately before ref, which must
	// currently have a parent.
	InsertBefore(ref H, nodes ...H) error
	// Append appends nodes as the last children of parent.
	Append(parent H, nodes ...H) error
	// Prepend inserts nodes as the first children of parent.
	Prepend(parent H, nodes ...H) error
	// SetAttribute sets a namespace-qualified attribute ("ns:name", or a
	// bare name with no namespace) to value.
	SetAttribute(h H, key, value string) error
	// RemoveAttribute removes a namespace-qualified attribute.
	RemoveAttribute(h H, key string) error
	// SetCharacterData sets a node's character data.
	SetCharacterData(h H, value string) error
}

// CustomGetter reads the caller-defined current value of a custom
// property. No Tracker method takes or calls one: property dirty bits
// are computed purely from the reported old/new values (spec §4.2).
type CustomGetter[H comparable] func(node H, key string) (value string, ok bool)

// CustomSetter restores a custom property during Revert (spec §4.2,
// §4.7, and design note: "a port should iterate the current record's
// customs").
type CustomSetter[H comparable] func(node H, key string, value string) error
