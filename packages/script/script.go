// Package script reads sheet scripts: one "LABEL = formula" assignment per
// line, with # comments and blank lines ignored.
package script

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/vogtb/sheetcalc/packages/spreadsheet"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Formula", Pattern: `=[^\n]*`},
	{Name: "Label", Pattern: `[A-Za-z]+[0-9]+`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var scriptParser = participle.MustBuild[file](
	participle.Lexer(scriptLexer),
	participle.Elide("Comment", "Whitespace"),
)

type file struct {
	Entries []*Entry `parser:"( @@ | Newline )*"`
}

// Entry is one assignment. Formula holds everything after the '=' of the
// assignment, so "A1 = =1+2" and "A1 = 1+2" set the same input.
type Entry struct {
	Pos     lexer.Position
	Label   string `parser:"@Label"`
	Formula string `parser:"@Formula"`
}

// Input returns the cell input the entry assigns
func (e Entry) Input() string {
	return strings.TrimSpace(strings.TrimPrefix(e.Formula, "="))
}

// Parse reads a script. filename is only used in positions and errors.
func Parse(filename, source string) ([]Entry, error) {
	f, err := scriptParser.ParseString(filename, source)
	if err != nil {
		return nil, errors.Wrap(err, "parse script")
	}

	entries := make([]Entry, 0, len(f.Entries))
	for _, e := range f.Entries {
		entries = append(entries, *e)
	}
	return entries, nil
}

// Apply sets every entry on sheet in order, stopping at the first rejected
// entry. later entries for a label replace earlier ones.
func Apply(sheet *spreadsheet.Spreadsheet, entries []Entry) error {
	r := spreadsheet.Chain(sheet, nil)
	for _, e := range entries {
		e := e
		r.Set(e.Label, e.Input()).OnError(func(err error) error {
			return errors.Wrapf(err, "%s: %s", e.Pos, e.Label)
		})
		if r.Error() != nil {
			return r.Error()
		}
	}
	return nil
}
