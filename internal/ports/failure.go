package ports

// FailureKind discriminates errors at network boundaries so callers can
// handle each class exhaustively instead of matching on message text.
type FailureKind string

const (
	// FailureTransport: the request never produced an HTTP response.
	FailureTransport FailureKind = "transport"
	// FailureServer: the server answered with a non-success status.
	FailureServer FailureKind = "server"
	// FailureDecode: the response arrived but its body was unusable.
	FailureDecode FailureKind = "decode"
)

type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return string(f.Kind) + ": " + f.Message
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }
