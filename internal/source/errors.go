package source

// Severity tells the caller how worrying a failure is.
type Severity int

const (
	// Common failures are expected and user-actionable, e.g. rate limiting.
	Common Severity = iota
	// Suspicious failures point at a changed or hostile upstream.
	Suspicious
	// Fault failures are bugs or unexpected states.
	Fault
)

func (s Severity) String() string {
	switch s {
	case Common:
		return "common"
	case Suspicious:
		return "suspicious"
	case Fault:
		return "fault"
	default:
		return "unknown"
	}
}

// FriendlyError carries a message fit for end users plus the underlying cause.
type FriendlyError struct {
	Message  string
	Severity Severity
	Cause    error
}

func (e *FriendlyError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *FriendlyError) Unwrap() error { return e.Cause }

// User-facing messages.
const (
	msgRateLimited  = "Instagram rate limit exceeded. Try again later."
	msgAccessDenied = "Access denied by Instagram (403). May require login or different approach."
	msgRejected     = "Instagram rejected the request: %d %s"
	msgNetwork      = "Failed to retrieve Instagram video details due to network issue."
	msgScraping     = "Could not extract video information. Instagram's structure may have changed."
	msgUnexpected   = "An unexpected error occurred while loading the Instagram video."
)
