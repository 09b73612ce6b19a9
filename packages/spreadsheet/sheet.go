package spreadsheet

import (
	"fmt"
	"log/slog"

	"github.com/vogtb/sheetcalc/packages/address"
	"github.com/vogtb/sheetcalc/packages/formula"
	"github.com/vogtb/sheetcalc/packages/lexer"
)

// AppErrorCode represents gRPC-style error codes for application-level errors.
// note that we are skipping error codes that don't make sense for our use-case,
// like unauthenticated, or permission denied.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// Unknown error. Errors raised by APIs that do not return enough error
	// information may be converted to this error.
	Unknown AppErrorCode = 2

	// InvalidArgument indicates client specified an invalid argument, such
	// as a malformed cell label.
	InvalidArgument AppErrorCode = 3

	// NotFound means some requested entity (e.g., a saved sheet) was not
	// found.
	NotFound AppErrorCode = 5

	// FailedPrecondition indicates operation was rejected because the
	// system is not in a state required for the operation's execution.
	FailedPrecondition AppErrorCode = 9

	// Internal errors. Means some invariants expected by underlying
	// system has been broken.
	Internal AppErrorCode = 13
)

// AppError represents errors at the application level (not
// formula errors, which are stored in cells as codes)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Tokenizer turns cell input into formula tokens. it returns the tokens even
// when it also reports unrecognized text.
type Tokenizer func(input string) (formula.Formula, error)

// NativeTokenizer is the default tokenizer
func NativeTokenizer(input string) (formula.Formula, error) {
	return lexer.NewLexer(input).Tokenize()
}

// Options configures a spreadsheet
type Options struct {
	// decimal places used by Display
	Precision int
	Logger    *slog.Logger
	Tokenizer Tokenizer
}

// DefaultOptions returns the options used by NewSpreadsheet
func DefaultOptions() Options {
	return Options{
		Precision: DefaultPrecision,
		Logger:    slog.Default(),
		Tokenizer: NativeTokenizer,
	}
}

// Spreadsheet stores cells by label, tracks dependencies between them, and
// materializes each cell's formula result on Calculate. it is not safe for
// concurrent use.
type Spreadsheet struct {
	cells            map[address.CellAddress]*Cell
	dependencyGraph  *DependencyGraph
	calculationStack *CalculationStack
	evaluator        *formula.Evaluator
	options          Options
}

// NewSpreadsheet creates a new spreadsheet instance
func NewSpreadsheet() *Spreadsheet {
	return NewSpreadsheetWithOptions(DefaultOptions())
}

// NewSpreadsheetWithOptions creates a spreadsheet, filling unset logger and
// tokenizer with defaults
func NewSpreadsheetWithOptions(opts Options) *Spreadsheet {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = NativeTokenizer
	}
	if opts.Precision < 0 {
		opts.Precision = 0
	}

	s := &Spreadsheet{
		cells:            make(map[address.CellAddress]*Cell),
		dependencyGraph:  NewDependencyGraph(),
		calculationStack: NewCalculationStack(),
		options:          opts,
	}
	s.evaluator = formula.NewEvaluator(s)
	return s
}

// resolveAddress parses a cell label into an address
func (s *Spreadsheet) resolveAddress(label string) (address.CellAddress, error) {
	addr, err := address.Parse(label)
	if err != nil {
		return address.CellAddress{}, NewApplicationError(InvalidArgument, fmt.Sprintf("Invalid address: %v", err))
	}
	return addr, nil
}

// Set tokenizes input and stores it in the cell at label. text the tokenizer
// does not recognize is kept as unknown tokens, so the cell calculates to
// InvalidFormula. an input that would make the cell depend on itself is
// rejected.
func (s *Spreadsheet) Set(label string, input string) error {
	addr, err := s.resolveAddress(label)
	if err != nil {
		return err
	}

	tokens, tokenErr := s.options.Tokenizer(input)
	if tokenErr != nil {
		s.options.Logger.Debug("unrecognized formula text", "label", addr.Label(), "err", tokenErr)
	}

	return s.setCell(addr, input, tokens)
}

// SetFormula stores already tokenized formula in the cell at label
func (s *Spreadsheet) SetFormula(label string, f formula.Formula) error {
	addr, err := s.resolveAddress(label)
	if err != nil {
		return err
	}
	return s.setCell(addr, "", f)
}

func (s *Spreadsheet) setCell(addr address.CellAddress, input string, tokens formula.Formula) error {
	precedents := referencedAddresses(tokens)
	if s.dependencyGraph.WouldCycle(addr, precedents) {
		return NewApplicationError(FailedPrecondition,
			fmt.Sprintf("Circular reference: %s would depend on itself", addr.Label()))
	}

	// replace dependencies
	s.dependencyGraph.ClearDependencies(addr)
	for _, precedent := range precedents {
		s.dependencyGraph.AddCellDependency(addr, precedent)
	}
	s.dependencyGraph.SetFormula(addr)

	s.cells[addr] = newCell(addr, input, tokens)
	s.markDirty(addr)
	return nil
}

// referencedAddresses collects the distinct cells a formula refers to
func referencedAddresses(f formula.Formula) []address.CellAddress {
	seen := make(map[address.CellAddress]struct{})
	var result []address.CellAddress
	for _, tok := range f {
		if tok.Kind != formula.TokenCell {
			continue
		}
		addr, err := address.Parse(tok.Value)
		if err != nil {
			// unresolvable references read as blank cells
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}
	return result
}

// markDirty flags a cell and everything that depends on it
func (s *Spreadsheet) markDirty(addr address.CellAddress) {
	s.dependencyGraph.MarkDirty(addr)
	for _, dep := range s.dependencyGraph.GetAllDependents(addr) {
		s.dependencyGraph.MarkDirty(dep)
	}
}

// Get returns the result stored by the last calculation. labels that were
// never set read as blank.
func (s *Spreadsheet) Get(label string) (formula.Result, error) {
	addr, err := s.resolveAddress(label)
	if err != nil {
		return formula.Result{}, err
	}
	cell, exists := s.cells[addr]
	if !exists {
		return blank.Result(), nil
	}
	return cell.Result(), nil
}

// Input returns the text a cell was set from, or "" for blank cells
func (s *Spreadsheet) Input(label string) (string, error) {
	addr, err := s.resolveAddress(label)
	if err != nil {
		return "", err
	}
	cell, exists := s.cells[addr]
	if !exists {
		return "", nil
	}
	return cell.Input(), nil
}

// Remove removes a cell. dependents are marked for recalculation and will
// see a blank cell.
func (s *Spreadsheet) Remove(label string) error {
	addr, err := s.resolveAddress(label)
	if err != nil {
		return err
	}

	if _, exists := s.cells[addr]; !exists {
		return nil // nothing to remove
	}

	// get dependents before clearing dependencies
	dependents := s.dependencyGraph.GetAllDependents(addr)

	s.dependencyGraph.RemoveNode(addr)
	delete(s.cells, addr)

	for _, dep := range dependents {
		s.dependencyGraph.MarkDirty(dep)
	}
	return nil
}

// Labels returns the labels of every set cell in row-major order
func (s *Spreadsheet) Labels() []string {
	addrs := make([]address.CellAddress, 0, len(s.cells))
	for addr := range s.cells {
		addrs = append(addrs, addr)
	}
	sortAddresses(addrs)

	labels := make([]string, len(addrs))
	for i, addr := range addrs {
		labels[i] = addr.Label()
	}
	return labels
}

// CellByLabel returns the stored cell, or a blank cell for labels that were
// never set or do not parse
func (s *Spreadsheet) CellByLabel(label string) formula.CellView {
	addr, err := address.Parse(label)
	if err != nil {
		return blank
	}
	if cell, exists := s.cells[addr]; exists {
		return cell
	}
	return blank
}

// Evaluate tokenizes and evaluates input against the current cell values
// without storing it
func (s *Spreadsheet) Evaluate(input string) formula.Result {
	tokens, err := s.options.Tokenizer(input)
	if err != nil {
		s.options.Logger.Debug("unrecognized formula text", "input", input, "err", err)
	}
	return s.evaluator.Evaluate(tokens)
}

// Display returns a cell as a sheet would show it. blank cells display as
// the empty string.
func (s *Spreadsheet) Display(label string) (string, error) {
	addr, err := s.resolveAddress(label)
	if err != nil {
		return "", err
	}
	cell, exists := s.cells[addr]
	if !exists {
		return "", nil
	}
	return FormatResult(cell.Result(), s.options.Precision), nil
}

// Snapshot returns the input of every set cell keyed by label. Load on the
// result restores the same tokens.
func (s *Spreadsheet) Snapshot() map[string]string {
	snapshot := make(map[string]string, len(s.cells))
	for addr, cell := range s.cells {
		snapshot[addr.Label()] = s.snapshotInput(cell)
	}
	return snapshot
}

// Load sets every cell in snapshot, in row-major order. JSON token arrays
// written by Snapshot are restored as tokens. cells already in
// the sheet are kept unless overwritten.
func (s *Spreadsheet) Load(snapshot map[string]string) error {
	addrs := make([]address.CellAddress, 0, len(snapshot))
	inputs := make(map[address.CellAddress]string, len(snapshot))
	for label, input := range snapshot {
		addr, err := s.resolveAddress(label)
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
		inputs[addr] = input
	}
	sortAddresses(addrs)

	for _, addr := range addrs {
		var err error
		if tokens, ok := decodeTokens(inputs[addr]); ok {
			err = s.SetFormula(addr.Label(), tokens)
		} else {
			err = s.Set(addr.Label(), inputs[addr])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Calculate recalculates all dirty cells in the spreadsheet
func (s *Spreadsheet) Calculate() error {
	s.calculationStack.reset()

	dirtyCells := s.dependencyGraph.DirtyCells()
	calculated := 0
	for _, addr := range dirtyCells {
		// skip if a dependent's calculation already handled it
		if !s.dependencyGraph.IsDirty(addr) {
			continue
		}
		n, err := s.calculateCell(addr)
		calculated += n
		if err != nil {
			return err
		}
	}

	// clear all dirty flags. cells that were referenced but never set
	// have nothing to calculate
	s.dependencyGraph.ClearAllDirty()

	s.options.Logger.Info("calculation finished", "cells", calculated, "dirty", len(dirtyCells))
	return nil
}

// calculateCell calculates a single cell after its dirty precedents and
// returns how many cells were calculated
func (s *Spreadsheet) calculateCell(addr address.CellAddress) (int, error) {
	if s.calculationStack.isProcessing(addr) {
		// Set rejects cycles, so reaching one means the graph is corrupt
		return 0, NewApplicationError(Internal, fmt.Sprintf("Circular reference detected at %s", addr.Label()))
	}

	s.calculationStack.push(addr)
	defer s.calculationStack.pop()

	calculated := 0
	for _, precedent := range s.dependencyGraph.GetDirectPrecedents(addr) {
		if !s.dependencyGraph.IsDirty(precedent) {
			continue
		}
		n, err := s.calculateCell(precedent)
		calculated += n
		if err != nil {
			return calculated, err
		}
	}

	s.dependencyGraph.ClearDirty(addr)

	cell, exists := s.cells[addr]
	if !exists {
		// referenced but never set
		return calculated, nil
	}

	result := s.evaluator.Evaluate(cell.tokens)
	cell.store(result)
	s.options.Logger.Debug("calculated cell",
		"label", addr.Label(), "value", result.Value, "code", string(result.Code))

	return calculated + 1, nil
}

// CalculationStack tracks cells being calculated for cycle detection
type CalculationStack struct {
	items      []address.CellAddress            // stack of cells to process
	processing map[address.CellAddress]struct{} // currently being processed
}

// NewCalculationStack creates a new calculation stack
func NewCalculationStack() *CalculationStack {
	return &CalculationStack{
		items:      make([]address.CellAddress, 0),
		processing: make(map[address.CellAddress]struct{}),
	}
}

// push adds a cell to the stack
func (cs *CalculationStack) push(addr address.CellAddress) {
	cs.items = append(cs.items, addr)
	cs.processing[addr] = struct{}{}
}

// pop removes and returns the top cell from the stack
func (cs *CalculationStack) pop() (address.CellAddress, bool) {
	if len(cs.items) == 0 {
		return address.CellAddress{}, false
	}
	addr := cs.items[len(cs.items)-1]
	cs.items = cs.items[:len(cs.items)-1]
	delete(cs.processing, addr)
	return addr, true
}

// isProcessing checks if a cell is currently being processed
func (cs *CalculationStack) isProcessing(addr address.CellAddress) bool {
	_, exists := cs.processing[addr]
	return exists
}

// reset clears the stack
func (cs *CalculationStack) reset() {
	cs.items = cs.items[:0]
	cs.processing = make(map[address.CellAddress]struct{})
}
