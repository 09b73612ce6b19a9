package formula

import "math"

// calculate applies one operator to the top two operands
func (ev *evaluation) calculate(op Token) {
	if len(ev.values) == 0 {
		return
	}
	if len(ev.values) < 2 {
		// best-effort result from the lone operand
		ev.code = ErrorCodeInvalidFormula
		ev.result = ev.pop()
		return
	}

	right := ev.pop()
	left := ev.pop()

	if op.Kind != TokenOperator {
		// an open parenthesis left over at drain time
		ev.code = ErrorCodeInvalidFormula
		return
	}

	switch op.Value {
	case OpAdd:
		ev.push(left + right)
	case OpSubtract:
		ev.push(left - right)
	case OpMultiply:
		ev.push(left * right)
	case OpDivide:
		if right == 0 {
			// both operands are consumed; later reductions underflow
			ev.code = ErrorCodeDivideByZero
			ev.result = math.Inf(1)
			return
		}
		ev.push(left / right)
	default:
		ev.code = ErrorCodeInvalidFormula
	}
}
