package kv

import "context"

// Future is the pending result of an operation running on another goroutine.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns its future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Wait blocks until the operation completes and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done is closed once the operation completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Then calls fn with the result once the operation completes. fn runs on its
// own goroutine.
func (f *Future[T]) Then(fn func(T, error)) {
	go func() {
		fn(f.Wait())
	}()
}

// GetAsync is Get on a background goroutine.
func (s *Store) GetAsync(ctx context.Context, key string, opts ...GetOption) *Future[Result] {
	return Go(func() (Result, error) {
		return s.Get(ctx, key, opts...)
	})
}

// SetAsync is Set on a background goroutine.
func (s *Store) SetAsync(ctx context.Context, key string, value any, opts ...SetOption) *Future[struct{}] {
	return Go(func() (struct{}, error) {
		return struct{}{}, s.Set(ctx, key, value, opts...)
	})
}

// DeleteAsync is Delete on a background goroutine.
func (s *Store) DeleteAsync(ctx context.Context, key string) *Future[struct{}] {
	return Go(func() (struct{}, error) {
		return struct{}{}, s.Delete(ctx, key)
	})
}
