package formula

import "strconv"

// Evaluator reduces token streams to results, reading referenced cells from
// a CellStore. all reduction state lives in a single Evaluate call, so one
// Evaluator may be shared as long as the store tolerates concurrent reads.
type Evaluator struct {
	cells CellStore
}

// NewEvaluator creates an evaluator backed by the given cell store. a nil
// store treats every referenced cell as blank.
func NewEvaluator(cells CellStore) *Evaluator {
	if cells == nil {
		cells = blankStore{}
	}
	return &Evaluator{cells: cells}
}

// Evaluate reduces a formula to a value and error code. the result depends
// only on the formula and the store's current contents.
func (e *Evaluator) Evaluate(f Formula) Result {
	ev := &evaluation{
		cells: e.cells,
		code:  ErrorCodeEmptyFormula,
	}

	if len(f) == 0 {
		return ev.state()
	}

	for _, tok := range f {
		switch tok.Kind {
		case TokenNumber:
			v, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				ev.code = ErrorCodeInvalidFormula
				continue
			}
			ev.push(v)
		case TokenCell:
			v, code := resolveCell(ev.cells, tok.Value)
			if code != ErrorCodeNone {
				// record and keep scanning
				ev.result = v
				ev.code = code
				ev.referenced = code
				continue
			}
			ev.push(v)
		default:
			ev.handleToken(tok)
		}
	}

	// reduce whatever is still pending
	for len(ev.operators) > 0 {
		ev.calculate(ev.popOperator())
	}

	return ev.finish()
}

// evaluation holds the stacks and running state of one Evaluate call
type evaluation struct {
	cells     CellStore
	values    []float64
	operators []Token

	result float64
	code   ErrorCode

	// last code copied from a referenced cell
	referenced ErrorCode
}

// handleToken dispatches operators and parentheses
func (ev *evaluation) handleToken(tok Token) {
	switch tok.Kind {
	case TokenOperator:
		if precedence(tok) == precedenceNone {
			ev.code = ErrorCodeInvalidFormula
			return
		}
		// equal precedence reduces first, giving left-to-right evaluation
		for len(ev.operators) > 0 {
			top := ev.operators[len(ev.operators)-1]
			if top.Kind != TokenOperator || precedence(top) < precedence(tok) {
				break
			}
			ev.calculate(ev.popOperator())
		}
		ev.operators = append(ev.operators, tok)
	case TokenLeftParen:
		ev.operators = append(ev.operators, tok)
	case TokenRightParen:
		for len(ev.operators) > 0 && ev.operators[len(ev.operators)-1].Kind != TokenLeftParen {
			ev.calculate(ev.popOperator())
		}
		if len(ev.operators) == 0 {
			// unmatched close parenthesis: tolerated, no frame to discard and
			// no code recorded. the reduction so far decides the outcome.
			return
		}
		ev.popOperator()
	default:
		ev.code = ErrorCodeInvalidFormula
	}
}

// finish applies the final-state policy
func (ev *evaluation) finish() Result {
	switch {
	case ev.referenced != ErrorCodeNone:
		// a referenced cell's error is authoritative
		return Result{Value: 0, Code: ev.referenced}
	case len(ev.values) == 1 && ev.code != ErrorCodeInvalidFormula:
		return Result{Value: ev.values[0], Code: ErrorCodeNone}
	case len(ev.values) == 0 && ev.code == ErrorCodeEmptyFormula:
		return Result{Value: 0, Code: ErrorCodeMissingParentheses}
	}
	return ev.state()
}

func (ev *evaluation) state() Result {
	return Result{Value: ev.result, Code: ev.code}
}

func (ev *evaluation) push(v float64) {
	ev.values = append(ev.values, v)
}

func (ev *evaluation) pop() float64 {
	v := ev.values[len(ev.values)-1]
	ev.values = ev.values[:len(ev.values)-1]
	return v
}

func (ev *evaluation) popOperator() Token {
	tok := ev.operators[len(ev.operators)-1]
	ev.operators = ev.operators[:len(ev.operators)-1]
	return tok
}

// blankStore answers every lookup with a blank cell
type blankStore struct{}

func (blankStore) CellByLabel(string) CellView { return blankCell{} }

type blankCell struct{}

func (blankCell) Formula() Formula     { return nil }
func (blankCell) ErrorCode() ErrorCode { return ErrorCodeEmptyFormula }
func (blankCell) Value() float64       { return 0 }
