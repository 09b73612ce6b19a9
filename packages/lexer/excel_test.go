package lexer

import (
	"testing"

	"github.com/vogtb/sheetcalc/packages/formula"
)

func TestFromExcel(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"=1+2", []string{"1", "+", "2"}},
		{"=(A1+2)*3", []string{"(", "A1", "+", "2", ")", "*", "3"}},
		{"=b2 / 4", []string{"B2", "/", "4"}},
		{"10-C3", []string{"10", "-", "C3"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := FromExcel(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertTokens(t, tokens, tt.want...)
		})
	}
}

func TestFromExcelMatchesLexer(t *testing.T) {
	inputs := []string{
		"=1+2*3",
		"=(A1+B2)/C3",
		"=10-3-2",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			excel, err := FromExcel(input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			native := Tokenize(input)
			assertTokens(t, excel, native.Strings()...)
			for i := range native {
				if excel[i].Kind != native[i].Kind {
					t.Errorf("token %d kind = %v, want %v", i, excel[i].Kind, native[i].Kind)
				}
			}
		})
	}
}

func TestFromExcelUnsupported(t *testing.T) {
	inputs := []string{
		"=SUM(A1,A2)",
		`="text"`,
		"=A1:B2",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tokens, err := FromExcel(input)
			if err == nil {
				t.Fatal("expected an error for unsupported tokens")
			}
			unknown := 0
			for _, tok := range tokens {
				if tok.Kind == formula.TokenUnknown {
					unknown++
				}
			}
			if unknown == 0 {
				t.Errorf("expected unknown tokens in %v", tokens.Strings())
			}

			// unsupported input still evaluates to a formula error
			got := formula.NewEvaluator(nil).Evaluate(tokens)
			if got.OK() {
				t.Errorf("evaluation of %q should fail, got %+v", input, got)
			}
		})
	}
}
