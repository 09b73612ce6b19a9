package lexer

import (
	"strings"
	"testing"

	"github.com/vogtb/sheetcalc/packages/formula"
)

func assertTokens(t *testing.T, got formula.Formula, want ...string) {
	t.Helper()
	values := got.Strings()
	if len(values) != len(want) {
		t.Fatalf("tokens = %v, want %v", values, want)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, values[i], want[i])
		}
	}
}

func TestLexerBasicFormulas(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"=1+2", []string{"1", "+", "2"}},
		{"1+2", []string{"1", "+", "2"}},
		{"=A1", []string{"A1"}},
		{"=A1+(2*3)", []string{"A1", "+", "(", "2", "*", "3", ")"}},
		{"  = 10 - B2 / 4 ", []string{"10", "-", "B2", "/", "4"}},
		{"=a1*zz10", []string{"A1", "*", "ZZ10"}},
		{"=.5+1.25", []string{".5", "+", "1.25"}},
		{"=1e3*2E-2", []string{"1e3", "*", "2E-2"}},
		{"=((1))", []string{"(", "(", "1", ")", ")"}},
		{"=", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertTokens(t, tokens, tt.want...)
		})
	}
}

func TestLexerTokenKinds(t *testing.T) {
	tokens := Tokenize("=A1+(2*3)")
	want := []formula.TokenKind{
		formula.TokenCell,
		formula.TokenOperator,
		formula.TokenLeftParen,
		formula.TokenNumber,
		formula.TokenOperator,
		formula.TokenNumber,
		formula.TokenRightParen,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d kind = %v, want %v", i, tokens[i].Kind, kind)
		}
	}
}

func TestLexerUnknownText(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		unknown []string
	}{
		{"=SUM(A1)", []string{"SUM", "(", "A1", ")"}, []string{"SUM"}},
		{"=A0+1", []string{"A0", "+", "1"}, []string{"A0"}},
		{"=AAAA1", []string{"AAAA1"}, []string{"AAAA1"}},
		{"=1+#", []string{"1", "+", "#"}, []string{"#"}},
		{"=2^3", []string{"2", "^", "3"}, []string{"^"}},
		{"=1e400", []string{"1e400"}, []string{"1e400"}},
		{"=1=2", []string{"1", "=", "2"}, []string{"="}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer(tt.input)
			tokens, err := lexer.Tokenize()
			if err == nil {
				t.Fatal("expected an error for unclassified text")
			}
			assertTokens(t, tokens, tt.want...)

			unknowns := lexer.Unknowns()
			if len(unknowns) != len(tt.unknown) {
				t.Fatalf("unknowns = %v, want %v", unknowns, tt.unknown)
			}
			for i, u := range unknowns {
				if u.Value != tt.unknown[i] {
					t.Errorf("unknown %d = %q, want %q", i, u.Value, tt.unknown[i])
				}
				if !strings.Contains(err.Error(), u.Value) {
					t.Errorf("error %q does not mention %q", err, u.Value)
				}
			}
			for _, tok := range tokens {
				if tok.Value == tt.unknown[0] && tok.Kind != formula.TokenUnknown {
					t.Errorf("%q should be an unknown token, got %v", tok.Value, tok.Kind)
				}
			}
		})
	}
}

func TestLexerUnknownPosition(t *testing.T) {
	lexer := NewLexer("=1 + $")
	if _, err := lexer.Tokenize(); err == nil {
		t.Fatal("expected an error")
	}
	unknowns := lexer.Unknowns()
	if len(unknowns) != 1 || unknowns[0].Pos != 5 {
		t.Errorf("unknowns = %+v, want $ at 5", unknowns)
	}
}

func TestLexerRetokenize(t *testing.T) {
	lexer := NewLexer("=1+#")
	first, _ := lexer.Tokenize()
	second, _ := lexer.Tokenize()

	assertTokens(t, first, "1", "+", "#")
	assertTokens(t, second, "1", "+", "#")
	if len(lexer.Unknowns()) != 1 {
		t.Errorf("unknowns should reset between runs, got %v", lexer.Unknowns())
	}
}

func TestTokenizeAndEvaluate(t *testing.T) {
	tests := []struct {
		input string
		value float64
		code  formula.ErrorCode
	}{
		{"=2+3*4", 14, formula.ErrorCodeNone},
		{"=(2+3)*4", 20, formula.ErrorCodeNone},
		{"=10-3-2", 5, formula.ErrorCodeNone},
		{"=5/0", 0, formula.ErrorCodeDivideByZero},
		{"=SUM(1)", 0, formula.ErrorCodeInvalidFormula},
		{"", 0, formula.ErrorCodeEmptyFormula},
	}

	evaluator := formula.NewEvaluator(nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := evaluator.Evaluate(Tokenize(tt.input))
			if got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
			if got.OK() && got.Value != tt.value {
				t.Errorf("value = %v, want %v", got.Value, tt.value)
			}
		})
	}
}
