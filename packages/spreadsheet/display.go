package spreadsheet

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vogtb/sheetcalc/packages/formula"
)

// DefaultPrecision is the number of decimal places shown when none is set
const DefaultPrecision = 6

// OverflowDisplay is shown for a successful calculation whose value left
// the float64 range, e.g. =1e308*10
const OverflowDisplay = "#NUM!"

// FormatValue renders a value rounded to precision decimal places, without
// trailing zeros. non-finite values have no decimal form.
func FormatValue(v float64, precision int) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return OverflowDisplay
	}
	if precision < 0 {
		precision = 0
	}
	return decimal.NewFromFloat(v).Round(int32(precision)).String()
}

// FormatResult renders a result as a sheet would show it: the value when
// the calculation succeeded, otherwise the mapped error code
func FormatResult(r formula.Result, precision int) string {
	if !r.OK() {
		return r.Code.Display()
	}
	return FormatValue(r.Value, precision)
}
