package db

import "context"

type KeychainInterface interface {
	// Lock takes the lock named name, and runs criticalSection while holding it.
	//
	// The lock is held until criticalSection returns.
	// Others trying to take the same lock wait for that.
	//
	// # Returns
	//
	// - error: error from criticalSection, or from the database.
	// When criticalSection fails, effects of Lock itself are discarded.
	Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error
}
