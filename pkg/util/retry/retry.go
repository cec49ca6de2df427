package retry

import "context"

// Classifier decides whether an error is worth retrying.
type Classifier func(error) bool

// Once runs op and, when it fails with an error the classifier accepts,
// runs it exactly one more time. Any second failure is returned as-is.
// This mirrors the storage policy used throughout the service: survive a
// single dropped connection, then surface the error.
func Once(ctx context.Context, transient Classifier, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil || transient == nil || !transient(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return op(ctx)
}

// OnceValue is Once for operations that produce a value.
func OnceValue[T any](ctx context.Context, transient Classifier, op func(context.Context) (T, error)) (T, error) {
	val, err := op(ctx)
	if err == nil || transient == nil || !transient(err) {
		return val, err
	}
	if ctx.Err() != nil {
		return val, err
	}
	return op(ctx)
}
