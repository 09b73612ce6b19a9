package lexer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/efp"

	"github.com/vogtb/sheetcalc/packages/address"
	"github.com/vogtb/sheetcalc/packages/formula"
)

// FromExcel tokenizes formula text with the Excel formula grammar and maps
// the result onto evaluator tokens. functions, text, logicals, ranges and
// postfix operators have no evaluator counterpart and come back as unknown
// tokens; the error names them.
func FromExcel(input string) (formula.Formula, error) {
	parser := efp.ExcelParser()
	parsed := parser.Parse(strings.TrimPrefix(strings.TrimSpace(input), "="))

	tokens := formula.Formula{}
	var unsupported []string
	for _, t := range parsed {
		if t.TType == efp.TokenTypeWhitespace {
			continue
		}
		tok, ok := fromExcelToken(t)
		if !ok {
			unsupported = append(unsupported, describeExcelToken(t))
		}
		tokens = append(tokens, tok)
	}

	if len(unsupported) > 0 {
		return tokens, errors.Errorf("unsupported excel tokens: %s", strings.Join(unsupported, ", "))
	}
	return tokens, nil
}

func fromExcelToken(t efp.Token) (formula.Token, bool) {
	unknown := formula.Token{Kind: formula.TokenUnknown, Value: t.TValue}

	switch t.TType {
	case efp.TokenTypeOperand:
		switch t.TSubType {
		case efp.TokenSubTypeNumber:
			tok := formula.Classify(t.TValue, nil)
			return tok, tok.Kind == formula.TokenNumber
		case efp.TokenSubTypeRange:
			if address.IsValidLabel(t.TValue) {
				return formula.Cell(address.Normalize(t.TValue)), true
			}
		}
	case efp.TokenTypeOperatorInfix, efp.TokenTypeOperatorPrefix:
		// a prefix sign maps onto the binary operator and is reported by
		// the evaluator as a malformed formula
		switch t.TValue {
		case formula.OpAdd, formula.OpSubtract, formula.OpMultiply, formula.OpDivide:
			return formula.Op(t.TValue), true
		}
	case efp.TokenTypeSubexpression:
		switch t.TSubType {
		case efp.TokenSubTypeStart:
			return formula.LeftParen(), true
		case efp.TokenSubTypeStop:
			return formula.RightParen(), true
		}
	}
	return unknown, false
}

func describeExcelToken(t efp.Token) string {
	if t.TSubType != "" {
		return fmt.Sprintf("%s/%s %q", t.TType, t.TSubType, t.TValue)
	}
	return fmt.Sprintf("%s %q", t.TType, t.TValue)
}
