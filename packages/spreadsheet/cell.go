package spreadsheet

import (
	"github.com/vogtb/sheetcalc/packages/address"
	"github.com/vogtb/sheetcalc/packages/formula"
)

// Cell represents a spreadsheet cell with its data and metadata
type Cell struct {
	address address.CellAddress // zero-based row and column
	input   string              // text as entered, empty for token-only cells
	tokens  formula.Formula     // tokenized formula
	value   float64             // value from the last calculation
	code    formula.ErrorCode   // code from the last calculation
}

// blank is what every never-set label reads as
var blank = &Cell{code: formula.ErrorCodeEmptyFormula}

func newCell(addr address.CellAddress, input string, tokens formula.Formula) *Cell {
	return &Cell{
		address: addr,
		input:   input,
		tokens:  tokens,
		// not calculated yet
		code: formula.ErrorCodeEmptyFormula,
	}
}

// Formula returns the cell's tokens
func (c *Cell) Formula() formula.Formula {
	return c.tokens
}

// ErrorCode returns the code stored by the last calculation
func (c *Cell) ErrorCode() formula.ErrorCode {
	return c.code
}

// Value returns the value stored by the last calculation
func (c *Cell) Value() float64 {
	return c.value
}

func (c *Cell) Label() string {
	return c.address.Label()
}

// Input returns the text the cell was set from. cells set from tokens
// report their tokens joined by spaces.
func (c *Cell) Input() string {
	if c.input == "" && len(c.tokens) > 0 {
		return joinTokens(c.tokens)
	}
	return c.input
}

// Result returns the materialized value and code as one result
func (c *Cell) Result() formula.Result {
	return formula.Result{Value: c.value, Code: c.code}
}

func (c *Cell) store(r formula.Result) {
	c.value = r.Value
	c.code = r.Code
}

func joinTokens(f formula.Formula) string {
	out := "="
	for i, s := range f.Strings() {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
