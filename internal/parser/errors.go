package parser

import "errors"

// Fatal parse errors. Row- and field-level problems are absorbed into the
// Report; only these two structural failures abort a parse.
var (
	// ErrHeaderNotFound means no row within the scan window contained a
	// recognized name-field label. The file layout is not recognized.
	ErrHeaderNotFound = errors.New("header row not found")

	// ErrNameColumnMissing means a header row was located but no column
	// mapped to the name field. The file layout is incompatible.
	ErrNameColumnMissing = errors.New("name column missing from header")
)
