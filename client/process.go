package client

// Handler maps a Response to a value, reporting whether it succeeded.
type Handler[T any] func(*Response) (T, bool)

// Process routes r to onValid for 2xx statuses and to onInvalid otherwise.
func Process[T any](r *Response, onValid, onInvalid Handler[T]) (T, bool) {
	if r.IsValidResponse() {
		return onValid(r)
	}
	return onInvalid(r)
}

// ProcessOrElse is Process with a side-effect-only invalid branch, which
// yields the zero value and false.
func ProcessOrElse[T any](r *Response, onValid Handler[T], onInvalid func(*Response)) (T, bool) {
	if r.IsValidResponse() {
		return onValid(r)
	}

	onInvalid(r)
	var zero T
	return zero, false
}

// ProcessFunc binds Process to its handlers.
func ProcessFunc[T any](onValid, onInvalid Handler[T]) Handler[T] {
	return func(r *Response) (T, bool) {
		return Process(r, onValid, onInvalid)
	}
}

// ProcessOrElseFunc binds ProcessOrElse to its handlers.
func ProcessOrElseFunc[T any](onValid Handler[T], onInvalid func(*Response)) Handler[T] {
	return func(r *Response) (T, bool) {
		return ProcessOrElse(r, onValid, onInvalid)
	}
}
