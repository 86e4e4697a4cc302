package errs

import "errors"

var (
	ErrBackendConnection = errors.New("database connection error")
	ErrCommitFailed      = errors.New("failed to commit results to the database")
	ErrStoreNotLoaded    = errors.New("store must be loaded before accepting commits")
	ErrNilResult         = errors.New("nil result")
)

// FatalError marks failures the search flow cannot continue from: an
// unreadable backend at load time or any failed write. The library only
// returns it; whether the process terminates is the caller's decision.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err as a FatalError. Returns nil when err is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether any error in the chain is a FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
