// Command mutationtree-bench is a standalone throughput probe for the
// tree-mutation engine, kept as a plain flag-driven binary whose only
// dependencies beyond the standard library are the mutationtree package
// itself and github.com/google/uuid for node handles — adapted directly
// from the teacher's own cmd/garland-bench,
// which measured storage-tier throughput the same way.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nodeledger/mutationtree"
)

func main() {
	ops := flag.Int("ops", 200000, "number of simulated move operations")
	width := flag.Int("width", 16, "number of children in the rotating list")
	flag.Parse()

	fmt.Printf("simulating %d moves across a %d-wide child list\n", *ops, *width)
	start := time.Now()
	records, reversions := simulate(*ops, *width)
	elapsed := time.Since(start)

	fmt.Printf("done in %s (%.0f ops/sec); %d moves recorded, %d reversions detected\n",
		elapsed, float64(*ops)/elapsed.Seconds(), records, reversions)
}

// simulate repeatedly removes the first child and re-inserts it at the
// back, which both exercises Step 5's reversion-propagation outward walk
// (every other child is briefly a candidate) and keeps the engine's
// steady-state record count bounded, since each moved node eventually
// cycles back through its original neighbors.
func simulate(ops, width int) (records, reversions int) {
	root := uuid.New()
	children := make([]uuid.UUID, width)
	for i := range children {
		children[i] = uuid.New()
	}

	reversionCount := 0
	tracker := mutationtree.NewTracker[uuid.UUID](nil, nil, mutationtree.TrackerOptions{}).
		WithReversionHook(func(uuid.UUID) { reversionCount++ })

	for i := 0; i < ops; i++ {
		head := children[0]
		tail := children[len(children)-1]
		rest := append([]uuid.UUID{}, children[1:]...)
		children = append(rest, head)

		var prev mutationtree.Sibling[uuid.UUID]
		if len(rest) > 0 {
			prev = mutationtree.HandleSibling(rest[0])
		} else {
			prev = mutationtree.NoneSibling[uuid.UUID]()
		}
		_ = tracker.RecordChildren(root, []uuid.UUID{head}, nil, mutationtree.NoneSibling[uuid.UUID](), prev)
		_ = tracker.RecordChildren(root, nil, []uuid.UUID{head}, mutationtree.HandleSibling(tail), mutationtree.NoneSibling[uuid.UUID]())
	}

	return ops, reversionCount
}
