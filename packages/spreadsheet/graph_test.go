package spreadsheet

import (
	"testing"

	"github.com/vogtb/sheetcalc/packages/address"
)

func mustParse(t *testing.T, label string) address.CellAddress {
	t.Helper()
	addr, err := address.Parse(label)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", label, err)
	}
	return addr
}

func TestDependencyGraphDependents(t *testing.T) {
	dg := NewDependencyGraph()
	a1, b1, c1, d1 := mustParse(t, "A1"), mustParse(t, "B1"), mustParse(t, "C1"), mustParse(t, "D1")

	// D1 -> C1 -> B1 -> A1
	dg.AddCellDependency(b1, a1)
	dg.AddCellDependency(c1, b1)
	dg.AddCellDependency(d1, c1)

	direct := dg.GetDirectDependents(a1)
	if len(direct) != 1 || direct[0] != b1 {
		t.Errorf("direct dependents of A1 = %v, want [B1]", direct)
	}

	all := dg.GetAllDependents(a1)
	if len(all) != 3 {
		t.Errorf("all dependents of A1 = %v, want 3 cells", all)
	}

	precedents := dg.GetDirectPrecedents(d1)
	if len(precedents) != 1 || precedents[0] != c1 {
		t.Errorf("precedents of D1 = %v, want [C1]", precedents)
	}
}

func TestDependencyGraphWouldCycle(t *testing.T) {
	dg := NewDependencyGraph()
	a1, b1, c1 := mustParse(t, "A1"), mustParse(t, "B1"), mustParse(t, "C1")
	dg.AddCellDependency(b1, a1)
	dg.AddCellDependency(c1, b1)

	tests := []struct {
		name       string
		addr       address.CellAddress
		precedents []address.CellAddress
		want       bool
	}{
		{"self", a1, []address.CellAddress{a1}, true},
		{"direct back edge", a1, []address.CellAddress{b1}, true},
		{"transitive back edge", a1, []address.CellAddress{c1}, true},
		{"forward edge", c1, []address.CellAddress{a1}, false},
		{"no precedents", a1, nil, false},
		{"unrelated cell", mustParse(t, "Z9"), []address.CellAddress{c1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dg.WouldCycle(tt.addr, tt.precedents); got != tt.want {
				t.Errorf("WouldCycle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDependencyGraphRemoveNode(t *testing.T) {
	dg := NewDependencyGraph()
	a1, b1 := mustParse(t, "A1"), mustParse(t, "B1")
	dg.SetFormula(a1)
	dg.SetFormula(b1)
	dg.AddCellDependency(b1, a1)

	// A1 is still referenced by B1
	dg.RemoveNode(a1)
	if _, exists := dg.GetNode(a1); !exists {
		t.Error("referenced node should survive removal")
	}

	dg.RemoveNode(b1)
	if dg.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d after removing everything, want 0", dg.NodeCount())
	}
}

func TestDependencyGraphDirtyCells(t *testing.T) {
	dg := NewDependencyGraph()
	for _, label := range []string{"B2", "A2", "C1"} {
		dg.MarkDirty(mustParse(t, label))
	}

	dirty := dg.DirtyCells()
	want := []string{"C1", "A2", "B2"}
	for i, addr := range dirty {
		if addr.Label() != want[i] {
			t.Errorf("dirty[%d] = %s, want %s", i, addr.Label(), want[i])
		}
	}

	dg.ClearDirty(mustParse(t, "A2"))
	if dg.IsDirty(mustParse(t, "A2")) {
		t.Error("A2 should be clean")
	}
	dg.ClearAllDirty()
	if len(dg.DirtyCells()) != 0 {
		t.Error("dirty set should be empty")
	}
}
