package util

import (
	"log"
	"strings"
	"time"
)

const (
	lockRetries   = 3
	lockBaseDelay = 100 * time.Millisecond
)

// RetryOnLockWithResult retries an operation that fails with a SQLite
// lock error, backing off exponentially. Any other error returns
// immediately.
func RetryOnLockWithResult[T any](operation func() (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i < lockRetries; i++ {
		result, err = operation()
		if err == nil || !strings.Contains(err.Error(), "database is locked") {
			return result, err
		}

		delay := lockBaseDelay * time.Duration(1<<i)
		log.Printf("Database locked, retrying in %v...", delay)
		time.Sleep(delay)
	}

	return result, err
}

// RetryOnLock is RetryOnLockWithResult for operations without a result.
func RetryOnLock(operation func() error) error {
	_, err := RetryOnLockWithResult(func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}
