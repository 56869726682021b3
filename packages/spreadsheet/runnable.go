package spreadsheet

import (
	"fmt"
	"io"
)

// RunnableSheet provides a chainable interface for sheet operations. it
// wraps a Sheet and keeps the first error; every later call is a no-op until
// Reset.
type RunnableSheet struct {
	sheet   *Sheet
	err     error
	printLn func(string)
}

// NewRunnableSheet creates a new RunnableSheet. printLn is required and is
// used by Log and CheckError.
func NewRunnableSheet(printLn func(string), opts ...Option) *RunnableSheet {
	return &RunnableSheet{
		sheet:   NewSheet(opts...),
		printLn: printLn,
	}
}

// Set writes a cell (chainable)
func (r *RunnableSheet) Set(address string, text string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.sheet.Set(address, text)
	return r
}

// Clear clears a cell (chainable)
func (r *RunnableSheet) Clear(address string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.sheet.Clear(address)
	return r
}

// Get reads a cell value (chainable)
func (r *RunnableSheet) Get(address string) (*RunnableSheet, Value) {
	if r.err != nil {
		return r, nil // no-op if there's already an error
	}
	val, err := r.sheet.Get(address)
	if err != nil {
		r.err = err
	}
	return r, val
}

// Log prints the value of a cell using printLn (chainable)
func (r *RunnableSheet) Log(address string) *RunnableSheet {
	_, val := r.Get(address)
	if r.err != nil {
		return r
	}
	r.printLn(fmt.Sprintf("%s = %s", address, FormatValue(val)))
	return r
}

// Print writes the values of the printable area to w (chainable)
func (r *RunnableSheet) Print(w io.Writer) *RunnableSheet {
	if r.err != nil {
		return r
	}
	r.err = r.sheet.PrintValues(w)
	return r
}

// Run returns the sheet and the first error, if any. typically the last
// method in the chain
func (r *RunnableSheet) Run() (*Sheet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sheet, nil
}

// RunOrPanic is Run for examples and tests that want to fail fast
func (r *RunnableSheet) RunOrPanic() *Sheet {
	sheet, err := r.Run()
	if err != nil {
		panic(err)
	}
	return sheet
}

// Error returns the current error state
func (r *RunnableSheet) Error() error {
	return r.err
}

// CheckError logs the current error using printLn (chainable)
func (r *RunnableSheet) CheckError() *RunnableSheet {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Sheet returns the underlying sheet. use with caution as it bypasses error
// tracking.
func (r *RunnableSheet) Sheet() *Sheet {
	return r.sheet
}

// Reset clears the error state (chainable)
func (r *RunnableSheet) Reset() *RunnableSheet {
	r.err = nil
	return r
}

// Then runs fn unless an error is already recorded
func (r *RunnableSheet) Then(fn func(*RunnableSheet) *RunnableSheet) *RunnableSheet {
	if r.err != nil {
		return r
	}
	return fn(r)
}
