package metering

import (
	"context"
	"sync"
)

// CallContextSupplier resolves the call context of the message it was built
// for. Resolution is a round-trip to the call context provider.
type CallContextSupplier func(ctx context.Context) (string, error)

// Memoize wraps fn so it runs at most once; later calls return the first
// result, including its error.
func Memoize(fn CallContextSupplier) CallContextSupplier {
	var (
		once        sync.Once
		callContext string
		err         error
	)
	return func(ctx context.Context) (string, error) {
		once.Do(func() {
			callContext, err = fn(ctx)
		})
		return callContext, err
	}
}
