package mutationtree

import "testing"

func TestSiblingKinds(t *testing.T) {
	none := NoneSibling[string]()
	if !none.IsNone() || none.IsHandle() || none.IsUnknown() || none.IsPromise() {
		t.Fatalf("NoneSibling has wrong kind flags: %+v", none)
	}

	unknown := UnknownSibling[string]()
	if !unknown.IsUnknown() || unknown.IsNone() || unknown.IsHandle() {
		t.Fatalf("UnknownSibling has wrong kind flags: %+v", unknown)
	}

	h := HandleSibling("A")
	if !h.IsHandle() {
		t.Fatalf("HandleSibling(%q) is not IsHandle", "A")
	}
	if got, ok := h.Handle(); !ok || got != "A" {
		t.Fatalf("Handle() = (%v, %v), want (A, true)", got, ok)
	}
	if _, ok := none.Handle(); ok {
		t.Fatalf("None.Handle() returned ok=true")
	}
}

func TestPositionAbsentAndKnown(t *testing.T) {
	abs := AbsentPosition[string]()
	if !abs.IsAbsent() || abs.IsKnown() || abs.IsPartial() {
		t.Fatalf("AbsentPosition has wrong flags: %+v", abs)
	}

	known := PresentPosition("root", NoneSibling[string](), HandleSibling("B"))
	if known.IsAbsent() || known.IsPartial() || !known.IsKnown() {
		t.Fatalf("fully-specified PresentPosition should be Known: %+v", known)
	}
	if p, ok := known.Parent(); !ok || p != "root" {
		t.Fatalf("Parent() = (%v, %v), want (root, true)", p, ok)
	}

	partial := PresentPosition("root", UnknownSibling[string](), HandleSibling("B"))
	if !partial.IsPartial() || partial.IsKnown() {
		t.Fatalf("Position with an Unknown side should be Partial: %+v", partial)
	}
}

func TestPositionWithSide(t *testing.T) {
	p := PresentPosition("root", UnknownSibling[string](), UnknownSibling[string]())
	p = p.withSide(DirPrev, HandleSibling("A"))
	p = p.withSide(DirNext, NoneSibling[string]())
	if !p.IsKnown() {
		t.Fatalf("expected Known after resolving both sides: %+v", p)
	}
	if got, ok := p.Prev().Handle(); !ok || got != "A" {
		t.Fatalf("Prev() = %v, want A", p.Prev())
	}
	if !p.Next().IsNone() {
		t.Fatalf("Next() = %v, want None", p.Next())
	}
}

func TestDirOther(t *testing.T) {
	if DirPrev.Other() != DirNext || DirNext.Other() != DirPrev {
		t.Fatalf("Dir.Other() is not an involution")
	}
}
