package spreadsheet

import (
	"encoding/json"
	"strings"

	"github.com/vogtb/sheetcalc/packages/formula"
)

// tokenRecord is the persisted form of one token of a cell set from tokens
type tokenRecord struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

var tokenKinds = map[string]formula.TokenKind{
	formula.TokenUnknown.String():    formula.TokenUnknown,
	formula.TokenNumber.String():     formula.TokenNumber,
	formula.TokenCell.String():       formula.TokenCell,
	formula.TokenOperator.String():   formula.TokenOperator,
	formula.TokenLeftParen.String():  formula.TokenLeftParen,
	formula.TokenRightParen.String(): formula.TokenRightParen,
}

// snapshotInput returns the text that restores cell through Load. cells set
// from tokens keep their joined text when it tokenizes back to the same
// tokens, otherwise the tokens are written out as a JSON array.
func (s *Spreadsheet) snapshotInput(cell *Cell) string {
	if cell.input != "" || len(cell.tokens) == 0 {
		return cell.input
	}

	joined := joinTokens(cell.tokens)
	if retokenized, err := s.options.Tokenizer(joined); err == nil && sameTokens(retokenized, cell.tokens) {
		return joined
	}

	records := make([]tokenRecord, len(cell.tokens))
	for i, tok := range cell.tokens {
		records[i] = tokenRecord{Kind: tok.Kind.String(), Value: tok.Value}
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return joined
	}
	return string(encoded)
}

// decodeTokens reads a JSON token array written by snapshotInput
func decodeTokens(input string) (formula.Formula, bool) {
	if !strings.HasPrefix(input, "[") {
		return nil, false
	}

	var records []tokenRecord
	if err := json.Unmarshal([]byte(input), &records); err != nil || len(records) == 0 {
		return nil, false
	}

	f := make(formula.Formula, len(records))
	for i, rec := range records {
		kind, ok := tokenKinds[rec.Kind]
		if !ok || rec.Value == "" {
			return nil, false
		}
		f[i] = formula.Token{Kind: kind, Value: rec.Value}
	}
	return f, true
}

func sameTokens(a, b formula.Formula) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
