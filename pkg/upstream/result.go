package upstream

// Result is the outcome of a single upstream fetch: either a body or the cause of failure.
type Result struct {
	Body       []byte
	StatusCode int
	Err        error
}

// Success builds a successful result.
func Success(statusCode int, body []byte) Result {
	return Result{Body: body, StatusCode: statusCode}
}

// Failure builds a failed result.
func Failure(err error) Result {
	return Result{Err: err}
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns the body as a string.
func (r Result) Text() string {
	return string(r.Body)
}
