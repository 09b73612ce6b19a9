package spreadsheet

import (
	"fmt"

	"github.com/vogtb/sheetcalc/packages/formula"
)

// RunnableSpreadsheet provides a chainable interface for
// spreadsheet operations. wraps the standard Spreadsheet and tracks
// errors internally
type RunnableSpreadsheet struct {
	spreadsheet *Spreadsheet
	err         error
	printLn     func(string)
}

// NewRunnableSpreadsheet creates a new RunnableSpreadsheet around a fresh
// spreadsheet. printLn is used by Log and CheckError; nil discards output.
func NewRunnableSpreadsheet(printLn func(string)) *RunnableSpreadsheet {
	return Chain(NewSpreadsheet(), printLn)
}

// Chain wraps an existing spreadsheet
func Chain(s *Spreadsheet, printLn func(string)) *RunnableSpreadsheet {
	if printLn == nil {
		printLn = func(string) {}
	}
	return &RunnableSpreadsheet{
		spreadsheet: s,
		printLn:     printLn,
	}
}

// Set sets a cell input (chainable)
func (r *RunnableSpreadsheet) Set(label string, input string) *RunnableSpreadsheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.spreadsheet.Set(label, input)
	return r
}

// SetFormula sets tokenized formula (chainable)
func (r *RunnableSpreadsheet) SetFormula(label string, f formula.Formula) *RunnableSpreadsheet {
	if r.err != nil {
		return r
	}
	r.err = r.spreadsheet.SetFormula(label, f)
	return r
}

// Remove removes a cell (chainable)
func (r *RunnableSpreadsheet) Remove(label string) *RunnableSpreadsheet {
	if r.err != nil {
		return r
	}
	r.err = r.spreadsheet.Remove(label)
	return r
}

// Calculate recalculates all formulas (chainable)
func (r *RunnableSpreadsheet) Calculate() *RunnableSpreadsheet {
	if r.err != nil {
		return r
	}
	r.err = r.spreadsheet.Calculate()
	return r
}

// Run executes a final calculation and returns the spreadsheet and any error.
// typically the last method in the chain
func (r *RunnableSpreadsheet) Run() (*Spreadsheet, error) {
	if r.err != nil {
		return nil, r.err
	}

	r.err = r.spreadsheet.Calculate()
	if r.err != nil {
		return nil, r.err
	}

	return r.spreadsheet, nil
}

// Error returns the current error state
func (r *RunnableSpreadsheet) Error() error {
	return r.err
}

// CheckError logs the current error using the PrintLn function (chainable)
func (r *RunnableSpreadsheet) CheckError() *RunnableSpreadsheet {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Spreadsheet returns the underlying spreadsheet. use with caution as it
// bypasses error tracking.
func (r *RunnableSpreadsheet) Spreadsheet() *Spreadsheet {
	return r.spreadsheet
}

// OnError allows error handling in the chain
func (r *RunnableSpreadsheet) OnError(fn func(error) error) *RunnableSpreadsheet {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// SetBatch sets multiple cells at once in row-major order (chainable)
func (r *RunnableSpreadsheet) SetBatch(cells map[string]string) *RunnableSpreadsheet {
	if r.err != nil {
		return r
	}
	r.err = r.spreadsheet.Load(cells)
	return r
}

// Value is a helper to get a single result from the chain.
// example: v := NewRunnableSpreadsheet(nil).Set("A1", "10").Set("A2", "=A1*2").Calculate().Value("A2")
// once the chain has failed it returns a Partial result; Error() has the cause.
func (r *RunnableSpreadsheet) Value(label string) formula.Result {
	if r.err != nil {
		return failedResult
	}

	val, err := r.spreadsheet.Get(label)
	if err != nil {
		r.err = err
		return failedResult
	}
	return val
}

var failedResult = formula.Result{Code: formula.ErrorCodePartial}

// Log logs the displayed value of a cell using the provided PrintLn
// function (chainable)
func (r *RunnableSpreadsheet) Log(label string) *RunnableSpreadsheet {
	if r.err != nil {
		return r
	}

	shown, err := r.spreadsheet.Display(label)
	if err != nil {
		r.err = err
		return r
	}

	if shown == "" {
		r.printLn(fmt.Sprintf("%s: <empty>", label))
	} else {
		r.printLn(fmt.Sprintf("%s: %s", label, shown))
	}
	return r
}
