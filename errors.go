package dechib

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by engine operations. They are always wrapped in a
// *TableError naming the offending table and column; match with errors.Is.
var (
	ErrTableExists         = errors.New("table already exists")
	ErrTableNotFound       = errors.New("table not found")
	ErrForeignKey          = errors.New("invalid foreign key")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrMissingColumn       = errors.New("missing required column")
	ErrTypeMismatch        = errors.New("value does not match column type")
	ErrUnsupportedDefault  = errors.New("unsupported default expression")
	ErrUngeneratableColumn = errors.New("cannot generate value for column")
	ErrNoCounter           = errors.New("no live auto-increment counter")
	ErrRowWidth            = errors.New("row width does not match column list")
	ErrNoRowKey            = errors.New("no row key can be derived")
)

// TableError carries the table (and, when known, the column) an operation
// failed on, wrapping one of the sentinel error kinds above.
type TableError struct {
	Table  string
	Column string
	Msg    string
	Err    error
}

func tableErrf(table, column string, err error, format string, args ...any) error {
	return &TableError{table, column, fmt.Sprintf(format, args...), err}
}

func (e *TableError) Unwrap() error {
	return e.Err
}

func (e *TableError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Table)
	if e.Column != "" {
		buf.WriteByte('.')
		buf.WriteString(e.Column)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

// DataError reports a failure to decode stored bytes, with a bounded hex
// preview of the offending data.
type DataError struct {
	Data []byte
	Err  error
	Msg  string
}

func dataErrf(data []byte, err error, format string, args ...any) error {
	return &DataError{data, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const previewLen = 64
	n := len(e.Data)
	preview := e.Data
	ellipsis := ""
	if n > previewLen {
		preview = e.Data[:previewLen]
		ellipsis = "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: (%d) %x%s", e.Msg, e.Err, n, preview, ellipsis)
	}
	return fmt.Sprintf("%s: (%d) %x%s", e.Msg, n, preview, ellipsis)
}
