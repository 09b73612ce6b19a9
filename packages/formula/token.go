package formula

import (
	"math"
	"strconv"
)

// TokenKind represents the lexical class of a formula token
type TokenKind int

const (
	TokenUnknown TokenKind = iota
	TokenNumber
	TokenCell
	TokenOperator
	TokenLeftParen
	TokenRightParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "Number"
	case TokenCell:
		return "Cell"
	case TokenOperator:
		return "Operator"
	case TokenLeftParen:
		return "LeftParen"
	case TokenRightParen:
		return "RightParen"
	default:
		return "Unknown"
	}
}

// Operator symbols understood by the arithmetic unit
const (
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "*"
	OpDivide   = "/"
)

// precedence levels. parentheses and anything else sit at 0 so they always
// yield to a real operator.
const (
	precedenceNone = 0
	precedenceLow  = 1
	precedenceHigh = 2
)

// Token is one immutable lexical unit of a formula
type Token struct {
	Kind  TokenKind
	Value string
}

func (t Token) String() string {
	return t.Value
}

// Formula is an ordered token sequence. the empty formula means "no formula".
type Formula []Token

// Strings returns the source text of every token
func (f Formula) Strings() []string {
	out := make([]string, len(f))
	for i, tok := range f {
		out[i] = tok.Value
	}
	return out
}

// LabelPredicate reports whether a token is a syntactically valid cell label.
// it is supplied by the cell abstraction.
type LabelPredicate func(text string) bool

// Number creates a numeric literal token
func Number(v float64) Token {
	return Token{Kind: TokenNumber, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// Cell creates a cell reference token
func Cell(label string) Token {
	return Token{Kind: TokenCell, Value: label}
}

// Op creates an operator token. the symbol is not checked here; the
// arithmetic unit rejects anything outside + - * /.
func Op(symbol string) Token {
	return Token{Kind: TokenOperator, Value: symbol}
}

// LeftParen creates an opening parenthesis token
func LeftParen() Token {
	return Token{Kind: TokenLeftParen, Value: "("}
}

// RightParen creates a closing parenthesis token
func RightParen() Token {
	return Token{Kind: TokenRightParen, Value: ")"}
}

// Classify decides which variant a raw token belongs to. numbers win over
// cell labels, which win over operators and parentheses.
func Classify(text string, isCellLabel LabelPredicate) Token {
	if isNumber(text) {
		return Token{Kind: TokenNumber, Value: text}
	}
	if isCellLabel != nil && isCellLabel(text) {
		return Token{Kind: TokenCell, Value: text}
	}
	switch text {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return Token{Kind: TokenOperator, Value: text}
	case "(":
		return LeftParen()
	case ")":
		return RightParen()
	}
	return Token{Kind: TokenUnknown, Value: text}
}

// Tokens classifies each raw token text in order
func Tokens(isCellLabel LabelPredicate, texts ...string) Formula {
	f := make(Formula, 0, len(texts))
	for _, text := range texts {
		f = append(f, Classify(text, isCellLabel))
	}
	return f
}

// isNumber reports whether text parses as a finite numeric literal
func isNumber(text string) bool {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// precedence returns the binding strength of an operator token
func precedence(t Token) int {
	if t.Kind != TokenOperator {
		return precedenceNone
	}
	switch t.Value {
	case OpAdd, OpSubtract:
		return precedenceLow
	case OpMultiply, OpDivide:
		return precedenceHigh
	default:
		return precedenceNone
	}
}
