package pysource

import (
	"errors"
	"fmt"
)

// Validation sentinels returned by ParseFile, ReadSource, and ValidatePath.
var (
	ErrNotPythonFile = errors.New("not a python file")
	ErrNotRegular    = errors.New("not a regular file")
	ErrFileTooLarge  = errors.New("file too large")
	ErrBinaryFile    = errors.New("binary file")
)

// ParseError reports invalid Python syntax. Line and Column are 1-based and
// point at the first syntax error found in the file.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}

	return fmt.Sprintf("%s: syntax error at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Msg)
}
