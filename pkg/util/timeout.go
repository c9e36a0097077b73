package util

import (
	"time"

	"github.com/pkg/errors"
)

// Timeout runs fn and gives up after the specified interval. The underlying
// call keeps running on its goroutine; callers treat the handle as dead.
func Timeout(fn func() error, duration time.Duration) error {
	var err error
	ch := make(chan struct{}, 1)
	go func() {
		err = fn()
		ch <- struct{}{}
	}()
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ch:
		return err
	case <-timer.C:
		return errors.New("timed out after " + duration.String())
	}
}
