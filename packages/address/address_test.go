package address

import "testing"

func TestIsValidLabel(t *testing.T) {
	valid := []string{"A1", "b12", "Z99", "AA10", "zzz1000"}
	invalid := []string{"", "A", "1", "A0", "A01", "1A", "AAAA1", "A1B", "A-1", "A 1", "SUM"}

	for _, label := range valid {
		if !IsValidLabel(label) {
			t.Errorf("IsValidLabel(%q) = false, want true", label)
		}
	}
	for _, label := range invalid {
		if IsValidLabel(label) {
			t.Errorf("IsValidLabel(%q) = true, want false", label)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		label string
		want  CellAddress
	}{
		{"A1", CellAddress{Row: 0, Column: 0}},
		{"b3", CellAddress{Row: 2, Column: 1}},
		{"Z1", CellAddress{Row: 0, Column: 25}},
		{"AA1", CellAddress{Row: 0, Column: 26}},
		{"AZ7", CellAddress{Row: 6, Column: 51}},
		{"BA2", CellAddress{Row: 1, Column: 52}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := Parse(tt.label)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.label, got, tt.want)
			}
			if label := got.Label(); label != Normalize(tt.label) {
				t.Errorf("Label() = %q, want %q", label, Normalize(tt.label))
			}
		})
	}

	if _, err := Parse("A0"); err == nil {
		t.Error("Parse(A0) should fail")
	}
}

func TestColumnName(t *testing.T) {
	tests := map[uint32]string{0: "A", 25: "Z", 26: "AA", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for col, want := range tests {
		if got := ColumnName(col); got != want {
			t.Errorf("ColumnName(%d) = %q, want %q", col, got, want)
		}
	}
}

func TestLess(t *testing.T) {
	a1 := CellAddress{Row: 0, Column: 0}
	b1 := CellAddress{Row: 0, Column: 1}
	a2 := CellAddress{Row: 1, Column: 0}

	if !Less(a1, b1) || !Less(b1, a2) || Less(a2, a1) || Less(a1, a1) {
		t.Error("Less should order row-major")
	}
}
