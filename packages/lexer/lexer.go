package lexer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/vogtb/sheetcalc/packages/address"
	"github.com/vogtb/sheetcalc/packages/formula"
)

// character classification constants. slightly easier to read.
const (
	charNull     = 0
	charTab      = '\t'
	charNewline  = '\n'
	charReturn   = '\r'
	charSpace    = ' '
	charLParen   = '('
	charRParen   = ')'
	charAsterisk = '*'
	charPlus     = '+'
	charMinus    = '-'
	charPeriod   = '.'
	charSlash    = '/'
	charEqual    = '='
)

// Lexer splits formula text into evaluator tokens. it never rejects input:
// text it cannot classify becomes an Unknown token so that evaluation can
// record InvalidFormula for it.
type Lexer struct {
	runes   []rune // UTF-8 aware representation
	pos     int
	tokens  formula.Formula
	unknown []Unknown
}

// Unknown describes a run of text the lexer could not classify
type Unknown struct {
	Value string
	Pos   int // rune position in input
}

// NewLexer creates a new lexer for the given formula input. a leading '='
// is optional.
func NewLexer(input string) *Lexer {
	return &Lexer{
		runes:  []rune(input),
		tokens: formula.Formula{},
	}
}

// Tokenize tokenizes the entire input. the error lists unclassified text;
// the returned tokens are complete either way.
func (l *Lexer) Tokenize() (formula.Formula, error) {
	l.pos = 0
	l.tokens = formula.Formula{}
	l.unknown = nil

	// skip the optional formula prefix
	l.skipWhitespace()
	if l.current() == charEqual {
		l.pos++
	}

	for {
		l.skipWhitespace()
		if l.pos >= len(l.runes) {
			break
		}
		l.tokens = append(l.tokens, l.nextToken())
	}

	if len(l.unknown) > 0 {
		parts := make([]string, len(l.unknown))
		for i, u := range l.unknown {
			parts[i] = fmt.Sprintf("%q at %d", u.Value, u.Pos)
		}
		return l.tokens, errors.Errorf("unexpected %s", strings.Join(parts, ", "))
	}
	return l.tokens, nil
}

// Unknowns returns the unclassified text found by the last Tokenize call
func (l *Lexer) Unknowns() []Unknown {
	return l.unknown
}

// Tokenize is a convenience wrapper that ignores unclassified text
func Tokenize(input string) formula.Formula {
	tokens, _ := NewLexer(input).Tokenize()
	return tokens
}

// nextToken returns the next token from the input
func (l *Lexer) nextToken() formula.Token {
	ch := l.current()

	// check for numbers
	if l.isDigit(ch) || (ch == charPeriod && l.isDigit(l.peek(1))) {
		return l.scanNumber()
	}

	// check for operators and parentheses
	switch ch {
	case charLParen:
		l.pos++
		return formula.LeftParen()
	case charRParen:
		l.pos++
		return formula.RightParen()
	case charPlus, charMinus, charAsterisk, charSlash:
		l.pos++
		return formula.Op(string(ch))
	}

	// check for cell labels
	if l.isAlpha(ch) {
		return l.scanLabel()
	}

	// unknown character
	startPos := l.pos
	l.pos++
	return l.unknownToken(string(ch), startPos)
}

// helper methods for character navigation and classification

// substring returns a substring of the original input based on rune positions
func (l *Lexer) substring(start, end int) string {
	if start < 0 || end > len(l.runes) || start > end {
		return ""
	}
	return string(l.runes[start:end])
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos >= len(l.runes) || pos < 0 {
		return charNull
	}
	return l.runes[pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		ch := l.current()
		if ch == charSpace || ch == charTab || ch == charNewline || ch == charReturn {
			l.pos++
		} else {
			break
		}
	}
}

func (l *Lexer) isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func (l *Lexer) isAlphaNumeric(ch rune) bool {
	return l.isAlpha(ch) || l.isDigit(ch)
}

// scanNumber scans a number token including decimals and scientific notation
func (l *Lexer) scanNumber() formula.Token {
	startPos := l.pos

	// scan integer part
	for l.pos < len(l.runes) && l.isDigit(l.current()) {
		l.pos++
	}

	// check for decimal part
	if l.current() == charPeriod && l.isDigit(l.peek(1)) {
		l.pos++ // consume '.'
		for l.pos < len(l.runes) && l.isDigit(l.current()) {
			l.pos++
		}
	}

	// check for scientific notation (e or E)
	if l.current() == 'e' || l.current() == 'E' {
		savedPos := l.pos
		l.pos++ // consume 'e' or 'E'

		// optional + or - sign
		if l.current() == charPlus || l.current() == charMinus {
			l.pos++
		}

		// must have at least one digit after e/E
		if !l.isDigit(l.current()) {
			// not scientific notation, restore position
			l.pos = savedPos
		} else {
			// scan exponent digits
			for l.pos < len(l.runes) && l.isDigit(l.current()) {
				l.pos++
			}
		}
	}

	value := l.substring(startPos, l.pos)
	tok := formula.Classify(value, nil)
	if tok.Kind != formula.TokenNumber {
		// out of range for a float64
		return l.unknownToken(value, startPos)
	}
	return tok
}

// scanLabel scans a cell label. words that are not labels (function names,
// out-of-range columns) come back as Unknown tokens.
func (l *Lexer) scanLabel() formula.Token {
	startPos := l.pos

	for l.pos < len(l.runes) && l.isAlphaNumeric(l.current()) {
		l.pos++
	}

	value := l.substring(startPos, l.pos)
	if !address.IsValidLabel(value) {
		return l.unknownToken(value, startPos)
	}
	return formula.Cell(address.Normalize(value))
}

func (l *Lexer) unknownToken(value string, pos int) formula.Token {
	l.unknown = append(l.unknown, Unknown{Value: value, Pos: pos})
	return formula.Token{Kind: formula.TokenUnknown, Value: value}
}
