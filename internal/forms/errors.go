package forms

import (
	"errors"
	"fmt"
)

// ErrDataLoad marks every failure to load the data directory. Loading is all
// or nothing: a single unreadable or malformed file aborts the load.
var ErrDataLoad = errors.New("forms: data load failed")

// DataLoadError identifies the file that could not be loaded.
type DataLoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e == nil {
		return ErrDataLoad.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("forms: %s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("forms: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *DataLoadError) Unwrap() []error {
	if e == nil || e.Err == nil {
		return []error{ErrDataLoad}
	}
	return []error{ErrDataLoad, e.Err}
}

func loadError(op, path string, err error) error {
	return &DataLoadError{Path: path, Op: op, Err: err}
}
