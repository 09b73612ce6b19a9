package address

import (
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maximum number of column letters in a label (ZZZ)
const maxColumnLetters = 3

// CellAddress locates a cell by zero-based row and column
type CellAddress struct {
	Row    uint32
	Column uint32
}

// IsValidLabel checks if a string is a valid cell label (e.g., A1, b12).
// a label is 1-3 letters followed by a row number without a leading zero.
func IsValidLabel(s string) bool {
	letters := 0
	for letters < len(s) && isLetter(s[letters]) {
		letters++
	}

	// must have at least one letter and one digit
	if letters == 0 || letters > maxColumnLetters || letters == len(s) {
		return false
	}

	// rows start at 1
	if s[letters] == '0' {
		return false
	}

	// check remaining characters are all digits
	for i := letters; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// Normalize returns the canonical upper-case form of a label. casers keep
// state, so each call builds its own.
func Normalize(label string) string {
	return cases.Upper(language.Und).String(label)
}

// Parse converts a label such as "B3" into an address
func Parse(label string) (CellAddress, error) {
	if !IsValidLabel(label) {
		return CellAddress{}, errors.Errorf("invalid cell label %q", label)
	}

	label = Normalize(label)
	letters := 0
	for isLetter(label[letters]) {
		letters++
	}

	// columns are bijective base-26: A=1 ... Z=26, AA=27
	var col uint32
	for i := 0; i < letters; i++ {
		col = col*26 + uint32(label[i]-'A'+1)
	}

	row, err := strconv.ParseUint(label[letters:], 10, 32)
	if err != nil {
		return CellAddress{}, errors.Wrapf(err, "invalid row in cell label %q", label)
	}

	return CellAddress{Row: uint32(row - 1), Column: col - 1}, nil
}

// Label returns the canonical label of an address
func (a CellAddress) Label() string {
	return ColumnName(a.Column) + strconv.FormatUint(uint64(a.Row)+1, 10)
}

// ColumnName returns the letters for a zero-based column index
func ColumnName(col uint32) string {
	var name []byte
	n := col + 1
	for n > 0 {
		n--
		name = append([]byte{byte('A' + n%26)}, name...)
		n /= 26
	}
	return string(name)
}

// Less orders addresses row-major, matching how sheets are read
func Less(a, b CellAddress) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Column < b.Column
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
