package callcontext

// Policy governs whether a resolution may bind a new call context.
type Policy int

const (
	CreateIfMissing Policy = iota
	FailIfMissing
)

func (p Policy) String() string {
	switch p {
	case CreateIfMissing:
		return "CREATE_IF_MISSING"
	case FailIfMissing:
		return "FAIL_IF_MISSING"
	default:
		return "UNKNOWN"
	}
}
