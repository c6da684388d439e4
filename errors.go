package orpheus

// StreamError reports a stream that failed mid-flight, after zero or more
// chunks were delivered. It is distinct from the io.EOF that marks a
// normal end.
type StreamError struct {
	Cause error
}

func (e *StreamError) Error() string {
	if e == nil || e.Cause == nil {
		return "orpheus: stream failed"
	}
	return "orpheus: stream failed: " + e.Cause.Error()
}

func (e *StreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
