package mutationtree

// Delta is the materialized per-node change record returned by
// Tracker.Diff (spec §4.1's diff(filter)).
type Delta[H comparable] struct {
	Original   Position[H]
	Mutated    Position[H]
	Attributes []PropertyDelta
	Data       *PropertyDelta
	Custom     []PropertyDelta
}

// IsEmpty reports whether d carries no change at all.
func (d Delta[H]) IsEmpty() bool {
	return d.Original.IsAbsent() && d.Mutated.IsAbsent() &&
		len(d.Attributes) == 0 && d.Data == nil && len(d.Custom) == 0
}

// Diff materializes the current delta for every node with a change
// visible under filter (spec §4.1/§6).
func (t *Tracker[H]) Diff(filter DiffFilter) map[H]Delta[H] {
	out := make(map[H]Delta[H])

	if filter.Any(CHILDREN) {
		for h, mn := range t.engine.records {
			d := out[h]
			if filter.Has(ORIGINAL) {
				d.Original = mn.original
			}
			if filter.Has(MUTATED) {
				d.Mutated = mn.mutated
			}
			out[h] = d
		}
	}

	if filter.Any(PROPERTY) {
		for _, h := range t.properties.dirtyNodes() {
			d := out[h]
			for _, pd := range t.properties.forNode(h) {
				switch pd.Mode {
				case PropertyAttribute:
					if filter.Has(ATTRIBUTE) {
						d.Attributes = append(d.Attributes, pd)
					}
				case PropertyData:
					if filter.Has(DATA) {
						pdCopy := pd
						d.Data = &pdCopy
					}
				case PropertyCustom:
					if filter.Has(CUSTOM) {
						d.Custom = append(d.Custom, pd)
					}
				}
			}
			out[h] = d
		}
	}

	for h, d := range out {
		if d.IsEmpty() {
			delete(out, h)
		}
	}
	return out
}
