// Package mutationtree tracks incremental mutations to a live hierarchical
// tree of nodes and maintains, in minimal delta form, the difference
// between the tree's state at an initial observation point and its
// current state.
//
// The core of the package is the tree-mutation engine (engine.go), which
// consumes batched, out-of-order child-list mutation reports and keeps a
// graph of MutatedNode records such that a node is in the graph if and
// only if its position differs from its original position. Attribute,
// character-data, and custom-property changes are tracked separately by
// a much simpler dirty-bit cache (property.go). A Tracker (coordinator.go)
// ties the two together and answers the five questions the package
// exists to answer: is anything different, what is the smallest region
// containing the differences, what changed per node, how do we patch a
// tree into the mutated shape, and how do we revert it.
package mutationtree
