package fanout

import (
	"context"
	"fmt"
	"sync"
)

// Outcome is the settled result of one task: either a value or the error
// that produced it, never both meaningful at once.
type Outcome[T any] struct {
	Key   string
	Value T
	Err   error
}

// Settle runs fn once per key, each in its own goroutine, and waits for
// every task to finish before returning. The returned slice preserves key
// order. A task that fails, or panics, settles into an Outcome with Err set;
// sibling tasks are unaffected. Each task writes only its own slot, so no
// further synchronization is needed by callers.
func Settle[T any](ctx context.Context, keys []string, fn func(ctx context.Context, key string) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = Outcome[T]{Key: key, Err: fmt.Errorf("task panicked: %v", r)}
				}
			}()
			value, err := fn(ctx, key)
			outcomes[i] = Outcome[T]{Key: key, Value: value, Err: err}
		}(i, key)
	}
	wg.Wait()

	return outcomes
}
