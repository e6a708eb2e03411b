package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nodeledger/mutationtree"
)

// runBench issues 2*ops synthetic record_children calls against a small
// rotating child list and reports throughput, grounded on the teacher's
// own plain stdlib benchmark loop (cmd/garland-bench) rather than a
// benchmarking framework — this is a quick-and-dirty throughput probe,
// not a statistically rigorous benchmark.
func runBench(ops int) {
	tree := newDemoTree()
	root := tree.newNode()
	handles := make([]uuid.UUID, 8)
	for i := range handles {
		handles[i] = tree.newNode()
	}
	if err := tree.Append(root, handles...); err != nil {
		fmt.Println("setup error:", err)
		return
	}

	tracker := mutationtree.NewTracker[uuid.UUID](tree, tree, mutationtree.TrackerOptions{})

	start := time.Now()
	for i := 0; i < ops; i++ {
		h := handles[i%len(handles)]
		_ = tree.Remove(h)
		_ = tree.Append(root, h)
		_ = tracker.RecordChildren(root, []uuid.UUID{h}, nil, mutationtree.NoneSibling[uuid.UUID](), mutationtree.NoneSibling[uuid.UUID]())
		_ = tracker.RecordChildren(root, nil, []uuid.UUID{h}, mutationtree.NoneSibling[uuid.UUID](), mutationtree.NoneSibling[uuid.UUID]())
		if i%2048 == 0 {
			tracker.Clear()
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("%d record_children calls in %s (%.0f calls/sec)\n", ops*2, elapsed, float64(ops*2)/elapsed.Seconds())
}
