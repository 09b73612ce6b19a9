package formula

// ErrorCode is the spreadsheet-visible error code of an evaluation. the empty
// code means success. codes copied from a referenced cell pass through
// unchanged, so the type is open-ended.
type ErrorCode string

const (
	ErrorCodeNone               ErrorCode = ""
	ErrorCodeEmptyFormula       ErrorCode = "EmptyFormula"       // formula has no tokens
	ErrorCodeDivideByZero       ErrorCode = "DivideByZero"       // right operand of / is zero
	ErrorCodeInvalidCell        ErrorCode = "InvalidCell"        // referenced cell is blank
	ErrorCodeInvalidFormula     ErrorCode = "InvalidFormula"     // malformed token stream
	ErrorCodeMissingParentheses ErrorCode = "MissingParentheses" // nothing left to reduce

	// reserved by the surrounding system, never produced by the evaluator

	ErrorCodeInvalidNumber   ErrorCode = "InvalidNumber"
	ErrorCodeInvalidOperator ErrorCode = "InvalidOperator"
	ErrorCodePartial         ErrorCode = "Partial"
)

// ErrorMapper maps error codes to the strings shown in a cell
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeEmptyFormula:       "#EMPTY!",
	ErrorCodeDivideByZero:       "#DIV/0!",
	ErrorCodeInvalidCell:        "#REF!",
	ErrorCodeInvalidFormula:     "#ERR",
	ErrorCodeMissingParentheses: "#ERR",
	ErrorCodeInvalidNumber:      "#ERR",
	ErrorCodeInvalidOperator:    "#ERR",
	ErrorCodePartial:            "#ERR",
}

// Display returns the cell text for a code. unknown codes are shown as-is.
func (c ErrorCode) Display() string {
	if s, ok := ErrorMapper[c]; ok {
		return s
	}
	return string(c)
}

// EvalError carries a non-empty error code as a Go error
type EvalError struct {
	Code ErrorCode
}

func (e *EvalError) Error() string {
	return "formula: " + string(e.Code)
}

// Result is the outcome of one evaluation. Value is meaningful only when
// Code is empty, except for DivideByZero where it holds +Inf.
type Result struct {
	Value float64
	Code  ErrorCode
}

// OK reports whether the evaluation succeeded
func (r Result) OK() bool {
	return r.Code == ErrorCodeNone
}

// Err returns the error code as an *EvalError, or nil on success
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &EvalError{Code: r.Code}
}
