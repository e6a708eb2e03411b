package mutationtree

// dataKey is the sentinel native-map key used for character data, so
// that attributes and character data can share one map per node (spec
// §4.1: "key = attribute name, or the sentinel data-key for character
// data").
const dataKey = "\x00data"

// PropertyMode distinguishes which property map an entry belongs to,
// mirroring the ATTRIBUTE/DATA/CUSTOM bits of DiffFilter.
type PropertyMode uint8

const (
	PropertyAttribute PropertyMode = iota
	PropertyData
	PropertyCustom
)

// propEntry is one tracked attribute, character-data, or custom-property
// value. value is the *original* value, captured the first time the
// property is seen; it is never mutated afterward. dirty is recomputed
// every time a new report arrives, by comparing the reported new value
// against value.
type propEntry struct {
	value string
	absent bool // true if "value" means "the attribute was absent originally"
	dirty bool
}

type propKey[H comparable] struct {
	node H
	mode PropertyMode
	key  string
}

// propertyCache is a straightforward value cache with dirty bits over
// attribute, character-data, and custom-property changes (spec §4.2).
// Unlike the tree-mutation engine, entries are never interpreted
// structurally; "dirty" is a pure value-equality comparison.
type propertyCache[H comparable] struct {
	entries   map[propKey[H]]*propEntry
	dirtyKeys map[H]map[propKey[H]]struct{} // only entries where dirty == true
}

func newPropertyCache[H comparable]() *propertyCache[H] {
	return &propertyCache[H]{
		entries:   make(map[propKey[H]]*propEntry),
		dirtyKeys: make(map[H]map[propKey[H]]struct{}),
	}
}

func (c *propertyCache[H]) setDirty(k propKey[H], e *propEntry, dirty bool) {
	wasDirty := e.dirty
	e.dirty = dirty
	if dirty == wasDirty {
		return
	}
	if dirty {
		m, ok := c.dirtyKeys[k.node]
		if !ok {
			m = make(map[propKey[H]]struct{})
			c.dirtyKeys[k.node] = m
		}
		m[k] = struct{}{}
	} else {
		if m, ok := c.dirtyKeys[k.node]; ok {
			delete(m, k)
			if len(m) == 0 {
				delete(c.dirtyKeys, k.node)
			}
		}
	}
}

// mark records an observed change: newValue is the value the property
// now has (used only to decide dirty), oldValue is the value it had
// just before this report. hasOld must be true; per spec §7 a report
// without an old value ("missing old value") is silently ignored.
func (c *propertyCache[H]) mark(node H, mode PropertyMode, key string, newValue string, newAbsent bool, oldValue string, oldAbsent, hasOld bool) {
	if !hasOld {
		return
	}
	k := propKey[H]{node: node, mode: mode, key: key}
	e, ok := c.entries[k]
	if !ok {
		e = &propEntry{value: oldValue, absent: oldAbsent}
		c.entries[k] = e
	}
	dirty := newAbsent != e.absent || (!newAbsent && newValue != e.value)
	c.setDirty(k, e, dirty)
}

// isDirty reports whether a specific property entry is currently dirty.
func (c *propertyCache[H]) isDirty(node H, mode PropertyMode, key string) bool {
	k := propKey[H]{node: node, mode: mode, key: key}
	e, ok := c.entries[k]
	return ok && e.dirty
}

// nodeDirty reports whether any property of node is currently dirty.
func (c *propertyCache[H]) nodeDirty(node H) bool {
	m, ok := c.dirtyKeys[node]
	return ok && len(m) > 0
}

// anyDirty reports whether any property anywhere is dirty.
func (c *propertyCache[H]) anyDirty() bool {
	return len(c.dirtyKeys) > 0
}

// dirtyNodes returns the set of nodes with at least one dirty property.
func (c *propertyCache[H]) dirtyNodes() []H {
	nodes := make([]H, 0, len(c.dirtyKeys))
	for n := range c.dirtyKeys {
		nodes = append(nodes, n)
	}
	return nodes
}

// synchronize removes all non-dirty entries and returns the remaining
// dirty count (spec §4.2: "because observer reports carry only the old
// value, ... dirty entries cannot be discarded until synchronize
// certifies that no further retrospective reports are in flight").
func (c *propertyCache[H]) synchronize() int {
	for k, e := range c.entries {
		if !e.dirty {
			delete(c.entries, k)
		}
	}
	count := 0
	for _, m := range c.dirtyKeys {
		count += len(m)
	}
	return count
}

// clear empties the cache unconditionally.
func (c *propertyCache[H]) clear() {
	c.entries = make(map[propKey[H]]*propEntry)
	c.dirtyKeys = make(map[H]map[propKey[H]]struct{})
}

// PropertyDelta describes one dirty attribute/data/custom entry for diff
// output.
type PropertyDelta struct {
	Mode          PropertyMode
	Key           string
	OriginalValue string
	OriginalAbsent bool
}

// forNode returns the dirty property deltas for a single node, keyed by
// (mode, key).
func (c *propertyCache[H]) forNode(node H) []PropertyDelta {
	m, ok := c.dirtyKeys[node]
	if !ok {
		return nil
	}
	out := make([]PropertyDelta, 0, len(m))
	for k := range m {
		e := c.entries[k]
		out = append(out, PropertyDelta{Mode: k.mode, Key: k.key, OriginalValue: e.value, OriginalAbsent: e.absent})
	}
	return out
}

// revert restores every dirty native entry for node via tree, and calls
// set for every dirty custom entry, per spec §4.2/§4.7. It only iterates
// the given node's own entries (resolving the open question in spec §9
// about the reference source's possible typo: "a port should iterate
// the current record's customs").
func (c *propertyCache[H]) revert(node H, tree TreeMutator[H], set CustomSetter[H]) error {
	m, ok := c.dirtyKeys[node]
	if !ok {
		return nil
	}
	for k := range m {
		e := c.entries[k]
		switch k.mode {
		case PropertyAttribute:
			if e.absent {
				if err := tree.RemoveAttribute(node, k.key); err != nil {
					return err
				}
			} else if err := tree.SetAttribute(node, k.key, e.value); err != nil {
				return err
			}
		case PropertyData:
			if err := tree.SetCharacterData(node, e.value); err != nil {
				return err
			}
		case PropertyCustom:
			if set != nil {
				if err := set(node, k.key, e.value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
