package util

import "github.com/pkg/errors"

// CatchErrs runs fn and converts any panic into a returned error. The BLE
// stack panics on some HCI failures (radio off, missing adapter); those must
// surface as recoverable status messages, never crash the process.
func CatchErrs(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.Wrap(e, "recovered from transport panic")
				return
			}
			err = errors.Errorf("recovered from transport panic: %v", r)
		}
	}()
	return fn()
}
