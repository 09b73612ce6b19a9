package formula

// CellView is the read-only view of a referenced cell's materialized state
type CellView interface {
	Formula() Formula
	ErrorCode() ErrorCode
	Value() float64
}

// CellStore looks up cells by label. it must answer for every syntactically
// valid label, returning a blank cell for labels that were never set.
type CellStore interface {
	CellByLabel(label string) CellView
}

// resolveCell translates a cell reference into an operand or a propagated
// error. the referenced cell is never recomputed.
func resolveCell(store CellStore, label string) (float64, ErrorCode) {
	cell := store.CellByLabel(label)

	// cells that already failed propagate their code verbatim
	if code := cell.ErrorCode(); code != ErrorCodeNone && code != ErrorCodeEmptyFormula {
		return 0, code
	}

	// referencing a blank cell is itself an error
	if len(cell.Formula()) == 0 {
		return 0, ErrorCodeInvalidCell
	}

	return cell.Value(), ErrorCodeNone
}
