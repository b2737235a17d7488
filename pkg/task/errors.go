package task

// ErrKind classifies search/task failures so callers can branch on intent
// rather than text, and so cmd/planctl can map each to a distinct process
// exit code.
type ErrKind int

const (
	// KindInput marks a malformed task or configuration.
	KindInput ErrKind = iota
	// KindUnsolvable marks a search that proved no solution exists.
	KindUnsolvable
	// KindUnsolvedIncomplete marks an open list that emptied using an
	// unreliable heuristic: no solution was found, but none is proven
	// not to exist.
	KindUnsolvedIncomplete
	// KindTimeout marks a search that exceeded its time bound.
	KindTimeout
	// KindOutOfMemory marks an allocation failure, typically in the
	// registry or an evaluator.
	KindOutOfMemory
	// KindCritical marks an internal invariant violation.
	KindCritical
)

func (k ErrKind) String() string {
	switch k {
	case KindInput:
		return "input_error"
	case KindUnsolvable:
		return "unsolvable"
	case KindUnsolvedIncomplete:
		return "unsolved_incomplete"
	case KindTimeout:
		return "timeout"
	case KindOutOfMemory:
		return "out_of_memory"
	case KindCritical:
		return "critical_error"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying a stable Kind alongside an optional
// underlying cause, so callers can use errors.Is/errors.As instead of
// matching on message text.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &task.Error{Kind: task.KindUnsolvable}) works without
// requiring the exact message or cause to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for the common no-cause cases.
var (
	ErrUnsolvable         = &Error{Kind: KindUnsolvable, Msg: "task proven unsolvable"}
	ErrUnsolvedIncomplete = &Error{Kind: KindUnsolvedIncomplete, Msg: "open list exhausted without a reliable dead-end proof"}
	ErrTimeout            = &Error{Kind: KindTimeout, Msg: "search exceeded its time bound"}
)

// NewInputError wraps cause (if any) as a KindInput *Error with msg.
func NewInputError(msg string, cause error) *Error {
	return &Error{Kind: KindInput, Msg: msg, Err: cause}
}

// NewCriticalError wraps cause (if any) as a KindCritical *Error with msg.
func NewCriticalError(msg string, cause error) *Error {
	return &Error{Kind: KindCritical, Msg: msg, Err: cause}
}
