package mutationtree

import "go.uber.org/zap"

// TrackerOptions configures a Tracker. See config.go for loading these
// from YAML and validating them.
type TrackerOptions struct {
	// DebugSelfCheck runs the invariant self-check (spec §4.3 step 6)
	// after every Mutation call. Expensive; meant for tests and
	// debugging, not production use.
	DebugSelfCheck bool `yaml:"debugSelfCheck" validate:"-"`

	// MaxOutstandingPromises, if nonzero, makes RecordChildren return
	// ErrInvariantViolation whenever more than this many sibling promises
	// are outstanding after a report. The report is applied either way;
	// the limit does not stop promises from being placed.
	// Zero means unbounded.
	MaxOutstandingPromises int `yaml:"maxOutstandingPromises" validate:"gte=0"`
}

// Tracker is the top-level coordinator of spec §4.1: it wires the
// tree-mutation engine and the property cache to a caller's live tree and
// answers the five questions the package exists to answer.
type Tracker[H comparable] struct {
	engine     *engine[H]
	properties *propertyCache[H]

	tree    LiveTree[H]
	mutator TreeMutator[H]
	custom  CustomSetter[H]

	opts          TrackerOptions
	log           *zap.Logger
	metrics       *Metrics
	reversionHook func(H)
}

// NewTracker constructs a Tracker. tree and mutator may be nil; Tracker
// methods that need them (Synchronize, PatchGroupedChildren, Revert,
// RangeOf) return ErrNilLiveTree/ErrNilTreeMutator if
// called without one configured.
func NewTracker[H comparable](tree LiveTree[H], mutator TreeMutator[H], opts TrackerOptions) *Tracker[H] {
	return &Tracker[H]{
		engine:     newEngine[H](),
		properties: newPropertyCache[H](),
		tree:       tree,
		mutator:    mutator,
		opts:       opts,
		log:        zap.NewNop(),
	}
}

// WithLogger sets the logger used for patch warnings. The default is a
// no-op logger.
func (t *Tracker[H]) WithLogger(log *zap.Logger) *Tracker[H] {
	if log != nil {
		t.log = log
	}
	return t
}

// WithCustomSetter sets the callback used to restore custom properties
// during Revert.
func (t *Tracker[H]) WithCustomSetter(set CustomSetter[H]) *Tracker[H] {
	t.custom = set
	return t
}

// WithMetrics attaches an optional Prometheus-backed counter set.
func (t *Tracker[H]) WithMetrics(m *Metrics) *Tracker[H] {
	t.metrics = m
	t.wireReversionHooks()
	return t
}

// WithReversionHook registers a callback fired whenever a node reverts to
// its original position. Composes with WithMetrics; both fire.
func (t *Tracker[H]) WithReversionHook(fn func(H)) *Tracker[H] {
	t.reversionHook = fn
	t.wireReversionHooks()
	return t
}

func (t *Tracker[H]) wireReversionHooks() {
	metrics, hook := t.metrics, t.reversionHook
	switch {
	case metrics == nil && hook == nil:
		t.engine.onReverted = nil
	case metrics == nil:
		t.engine.onReverted = hook
	case hook == nil:
		t.engine.onReverted = func(h H) { metrics.reversions.Inc() }
	default:
		t.engine.onReverted = func(h H) {
			metrics.reversions.Inc()
			hook(h)
		}
	}
}

// RecordChildren delegates a batched child-list report to the
// tree-mutation engine (spec §4.1's record_children).
func (t *Tracker[H]) RecordChildren(parent H, removed, added []H, prev, next Sibling[H]) error {
	if t.metrics != nil {
		t.metrics.recordsTotal.Add(float64(len(removed) + len(added)))
	}
	t.engine.Mutation(parent, removed, added, prev, next)
	outstanding := len(t.engine.promises.promises)
	if t.metrics != nil {
		t.metrics.promisesPlaced.Set(float64(outstanding))
	}
	if t.opts.MaxOutstandingPromises > 0 && outstanding > t.opts.MaxOutstandingPromises {
		return ErrInvariantViolation
	}
	if t.opts.DebugSelfCheck {
		return t.selfCheck()
	}
	return nil
}

// RecordAttribute delegates an attribute change report to the property
// cache (spec §4.1's record_attribute). newValue/newAbsent is the value
// as of this report, supplied by the caller; the live tree is not read.
// Per spec §4.2, mark is driven purely by comparing the reported new
// value against the first-seen original.
func (t *Tracker[H]) RecordAttribute(node H, key string, newValue string, newAbsent bool, oldValue string, oldAbsent bool) {
	t.properties.mark(node, PropertyAttribute, key, newValue, newAbsent, oldValue, oldAbsent, true)
}

// RecordAttributeMissingOldValue records that an attribute changed but
// the observer could not supply the prior value; per spec §7 this report
// is silently ignored.
func (t *Tracker[H]) RecordAttributeMissingOldValue(node H, key string) {
	t.properties.mark(node, PropertyAttribute, key, "", false, "", false, false)
}

// RecordData delegates a character-data change report to the property
// cache (spec §4.1's record_data).
func (t *Tracker[H]) RecordData(node H, newValue string, oldValue string) {
	t.properties.mark(node, PropertyData, dataKey, newValue, false, oldValue, false, true)
}

// RecordCustom delegates a custom-property change report to the property
// cache (spec §4.1's record_custom).
func (t *Tracker[H]) RecordCustom(node H, key string, newValue string, oldValue string) {
	t.properties.mark(node, PropertyCustom, key, newValue, false, oldValue, false, true)
}

// Mutated reports whether anything differs from the original, optionally
// scoped to root (spec §4.1's mutated(root?)).
func (t *Tracker[H]) Mutated(root *H) bool {
	if root == nil {
		return !t.engine.IsEmpty() || t.properties.anyDirty()
	}
	for _, mn := range t.engine.records {
		if p, ok := mn.mutated.Parent(); ok && t.isWithin(p, *root) {
			return true
		}
		if p, ok := mn.original.Parent(); ok && t.isWithin(p, *root) {
			return true
		}
	}
	for _, node := range t.properties.dirtyNodes() {
		if t.isWithin(node, *root) {
			return true
		}
	}
	return false
}

// isWithin reports whether node is root or a descendant of root, walking
// the live tree's parent chain. Without a live tree it can only tell
// exact identity with root.
func (t *Tracker[H]) isWithin(node, root H) bool {
	cur := node
	for {
		if cur == root {
			return true
		}
		if t.tree == nil {
			return false
		}
		p, ok := t.tree.Parent(cur)
		if !ok {
			return false
		}
		cur = p
	}
}

// Clear discards all tree-mutation records and property entries
// unconditionally (spec §4.1's clear(); P6).
func (t *Tracker[H]) Clear() {
	t.engine.records = make(map[H]*mutatedNode[H])
	t.engine.origIx = newDimIndex[H]()
	t.engine.mutIx = newDimIndex[H]()
	t.engine.promises = newPromiseTable[H]()
	t.properties.clear()
}

// Synchronize is a one-shot finalization pass: it asserts that every
// pending observation has been delivered, resolves all outstanding
// engine unknowns against the live tree, and discards non-dirty property
// entries (spec §4.1/§4.4).
func (t *Tracker[H]) Synchronize() error {
	if t.tree == nil {
		return ErrNilLiveTree
	}
	t.engine.Synchronize(t.tree)
	t.properties.synchronize()
	if t.opts.DebugSelfCheck {
		return t.selfCheck()
	}
	return nil
}

// Revert restores the live tree to its original configuration: property
// values first, then a physical patch derived from the original-dimension
// grouped children, then an unconditional clear (spec §4.1/§4.7).
func (t *Tracker[H]) Revert() error {
	if t.mutator == nil {
		return ErrNilTreeMutator
	}
	for _, node := range t.properties.dirtyNodes() {
		if err := t.properties.revert(node, t.mutator, t.custom); err != nil {
			return err
		}
	}
	groups := t.DiffGroupedChildren(Original, true)
	if err := t.PatchGroupedChildren(groups); err != nil {
		return err
	}
	t.Clear()
	return nil
}

func (t *Tracker[H]) warnUnpatchableGroup(g ChildGroup[H]) {
	t.log.Warn("skipping unpatchable group: untracked insertion whose siblings never became known",
		zap.Int("nodes", len(g.Nodes)))
}
