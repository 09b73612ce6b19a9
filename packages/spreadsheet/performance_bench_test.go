package spreadsheet

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/vogtb/sheetcalc/packages/address"
	"github.com/vogtb/sheetcalc/packages/lexer"
)

func newBenchSpreadsheet() *Spreadsheet {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSpreadsheetWithOptions(opts)
}

func BenchmarkLargeCellPopulation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := newBenchSpreadsheet()

		for row := 1; row <= 100; row++ {
			for col := 0; col < 26; col++ {
				label := fmt.Sprintf("%s%d", address.ColumnName(uint32(col)), row)
				s.Set(label, fmt.Sprint(row*(col+1)))
			}
		}
	}
}

func BenchmarkFormulaDependencyChain(b *testing.B) {
	s := newBenchSpreadsheet()

	s.Set("A1", "1")
	for i := 2; i <= 100; i++ {
		s.Set(fmt.Sprintf("A%d", i), fmt.Sprintf("=A%d+1", i-1))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set("A1", fmt.Sprint(i))
		s.Calculate()
	}
}

func BenchmarkWideDependencyFanOut(b *testing.B) {
	s := newBenchSpreadsheet()

	s.Set("A1", "100")
	for i := 2; i <= 500; i++ {
		s.Set(fmt.Sprintf("B%d", i), "=A1*2")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set("A1", fmt.Sprint(i))
		s.Calculate()
	}
}

func BenchmarkCircularReferenceDetection(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := newBenchSpreadsheet()

		s.Set("A1", "=B1+C1")
		s.Set("B1", "=C1+D1")
		s.Set("C1", "=D1+E1")
		s.Set("D1", "=E1+F1")
		s.Set("E1", "=F1+G1")
		s.Set("F1", "=G1+H1")
		s.Set("G1", "=H1")
		s.Set("H1", "=A1") // rejected

		s.Calculate()
	}
}

func BenchmarkManySmallFormulas(b *testing.B) {
	s := newBenchSpreadsheet()

	for row := 1; row <= 100; row++ {
		s.Set(fmt.Sprintf("A%d", row), fmt.Sprint(row))
		s.Set(fmt.Sprintf("B%d", row), fmt.Sprintf("=A%d*2", row))
		s.Set(fmt.Sprintf("C%d", row), fmt.Sprintf("=B%d+A%d", row, row))
		s.Set(fmt.Sprintf("D%d", row), fmt.Sprintf("=C%d/2", row))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set("A1", fmt.Sprint(i))
		s.Calculate()
	}
}

func BenchmarkDirtyPropagation(b *testing.B) {
	s := newBenchSpreadsheet()

	grid := 20
	for row := 1; row <= grid; row++ {
		for col := 0; col < grid; col++ {
			label := fmt.Sprintf("%s%d", address.ColumnName(uint32(col)), row)
			switch {
			case row == 1 && col == 0:
				s.Set(label, "1")
			case row == 1:
				s.Set(label, fmt.Sprintf("=%s%d+1", address.ColumnName(uint32(col-1)), row))
			case col == 0:
				s.Set(label, fmt.Sprintf("=%s%d+1", address.ColumnName(uint32(col)), row-1))
			default:
				left := fmt.Sprintf("%s%d", address.ColumnName(uint32(col-1)), row)
				top := fmt.Sprintf("%s%d", address.ColumnName(uint32(col)), row-1)
				s.Set(label, fmt.Sprintf("=%s+%s", left, top))
			}
		}
	}

	s.Calculate()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Set("A1", fmt.Sprint(i%100))
		s.Calculate()
	}
}

func BenchmarkEvaluateNested(b *testing.B) {
	s := newBenchSpreadsheet()
	s.Set("A1", "3")
	s.Calculate()
	tokens := lexer.Tokenize("=((A1+2)*(A1-1)/4+(7*(A1+A1)))-((1+2)*(3+4))")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.evaluator.Evaluate(tokens)
	}
}
