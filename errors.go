package mutationtree

import "errors"

// Invariant errors
var (
	// ErrInvariantViolation is raised by the debug self-check when the
	// engine's internal invariants (I1-I5) do not hold. It indicates a
	// bug in the engine, not caller misuse.
	ErrInvariantViolation = errors.New("mutationtree: invariant violation")
)

// Range errors
var (
	// ErrAmbiguousRange is returned by RangeOf when called without a root
	// and the current deltas span more than one disconnected tree.
	ErrAmbiguousRange = errors.New("mutationtree: range spans multiple root trees, a root argument is required")
)

// Config errors
var (
	// ErrNilLiveTree indicates a Tracker was asked to Synchronize or read
	// a live value without a LiveTree collaborator configured.
	ErrNilLiveTree = errors.New("mutationtree: no LiveTree collaborator configured")

	// ErrNilTreeMutator indicates Patch or Revert was called without a
	// TreeMutator collaborator configured.
	ErrNilTreeMutator = errors.New("mutationtree: no TreeMutator collaborator configured")
)

// Promise errors
var (
	// ErrPromiseNotPlaced indicates an attempt to resolve or discard a
	// promise id that is not currently placed. Indicates an internal
	// bookkeeping bug.
	ErrPromiseNotPlaced = errors.New("mutationtree: promise not placed")
)
