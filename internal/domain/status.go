package domain

// StatusKind tags a Status.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusError
	StatusSuccess
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	}
	return "unknown"
}

// Status is the state of one logical operation. A single tagged value
// replaces separate loading/error/success flags.
type Status struct {
	Kind    StatusKind
	Message string
}

// Idle is the resting status.
func Idle() Status { return Status{Kind: StatusIdle} }

// Loading marks an operation in flight.
func Loading() Status { return Status{Kind: StatusLoading} }

// Failed carries a user-facing error message.
func Failed(msg string) Status { return Status{Kind: StatusError, Message: msg} }

// Succeeded carries a user-facing success message.
func Succeeded(msg string) Status { return Status{Kind: StatusSuccess, Message: msg} }

func (s Status) IsLoading() bool { return s.Kind == StatusLoading }
func (s Status) IsError() bool   { return s.Kind == StatusError }
func (s Status) IsSuccess() bool { return s.Kind == StatusSuccess }

// HasMessage reports whether the status should be shown as a banner.
func (s Status) HasMessage() bool {
	return s.Kind == StatusError || s.Kind == StatusSuccess
}
