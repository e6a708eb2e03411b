package mutationtree

import "testing"

func TestPropertyCacheMarkAndDirty(t *testing.T) {
	c := newPropertyCache[string]()

	c.mark("X", PropertyAttribute, "id", "B", false, "A", false, true)
	if !c.isDirty("X", PropertyAttribute, "id") {
		t.Fatalf("entry should be dirty after a genuine change")
	}
	if !c.nodeDirty("X") || !c.anyDirty() {
		t.Fatalf("nodeDirty/anyDirty should report the dirty entry")
	}

	// Reported value reverts to the originally captured value: dirty bit
	// must clear, per spec scenario 5.
	c.mark("X", PropertyAttribute, "id", "A", false, "A_intermediate", false, true)
	if c.isDirty("X", PropertyAttribute, "id") {
		t.Fatalf("entry should not be dirty once reverted to the original value")
	}
	if c.nodeDirty("X") {
		t.Fatalf("node should have no dirty entries left")
	}
}

func TestPropertyCacheMissingOldValueIgnored(t *testing.T) {
	c := newPropertyCache[string]()
	c.mark("X", PropertyData, dataKey, "new", false, "", false, false)
	if c.isDirty("X", PropertyData, dataKey) {
		t.Fatalf("a report with no old value must be ignored entirely")
	}
	if c.anyDirty() {
		t.Fatalf("cache should have no entries after an ignored report")
	}
}

func TestPropertyCacheSynchronizeDropsCleanEntries(t *testing.T) {
	c := newPropertyCache[string]()
	c.mark("X", PropertyAttribute, "id", "B", false, "A", false, true)
	c.mark("Y", PropertyAttribute, "id", "A", false, "A", false, true)

	remaining := c.synchronize()
	if remaining != 1 {
		t.Fatalf("synchronize() = %d, want 1", remaining)
	}
	if _, ok := c.entries[propKey[string]{node: "Y", mode: PropertyAttribute, key: "id"}]; ok {
		t.Fatalf("clean entry for Y should have been dropped")
	}
	if _, ok := c.entries[propKey[string]{node: "X", mode: PropertyAttribute, key: "id"}]; !ok {
		t.Fatalf("dirty entry for X should survive synchronize")
	}
}

func TestPropertyCacheClear(t *testing.T) {
	c := newPropertyCache[string]()
	c.mark("X", PropertyAttribute, "id", "B", false, "A", false, true)
	c.clear()
	if c.anyDirty() || len(c.entries) != 0 {
		t.Fatalf("clear() left residual state")
	}
}

type fakeMutator struct {
	attrs map[string]map[string]string
	data  map[string]string
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{attrs: make(map[string]map[string]string), data: make(map[string]string)}
}
func (m *fakeMutator) Remove(h string) error            { return nil }
func (m *fakeMutator) InsertBefore(ref string, n ...string) error { return nil }
func (m *fakeMutator) Append(parent string, n ...string) error    { return nil }
func (m *fakeMutator) Prepend(parent string, n ...string) error   { return nil }
func (m *fakeMutator) SetAttribute(h, key, value string) error {
	if m.attrs[h] == nil {
		m.attrs[h] = make(map[string]string)
	}
	m.attrs[h][key] = value
	return nil
}
func (m *fakeMutator) RemoveAttribute(h, key string) error {
	delete(m.attrs[h], key)
	return nil
}
func (m *fakeMutator) SetCharacterData(h, value string) error {
	m.data[h] = value
	return nil
}

func TestPropertyCacheRevertRestoresOriginal(t *testing.T) {
	c := newPropertyCache[string]()
	// id was "A", observer reports it changed to "B".
	c.mark("X", PropertyAttribute, "id", "B", false, "A", false, true)
	// added-later was absent originally, observer reports it was added.
	c.mark("X", PropertyAttribute, "added-later", "now-set", false, "", true, true)

	mut := newFakeMutator()
	if err := c.revert("X", mut, nil); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if mut.attrs["X"]["id"] != "A" {
		t.Fatalf("revert did not restore id=A: %v", mut.attrs["X"])
	}
	if _, ok := mut.attrs["X"]["added-later"]; ok {
		t.Fatalf("revert should have removed added-later (absent originally), got %v", mut.attrs["X"])
	}
}
