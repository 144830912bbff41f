package growth

import "errors"

// Error kinds surfaced to the CLI. Callers wrap them with context and match
// with errors.Is.
var (
	ErrPathNotFound  = errors.New("filesystem path not found")
	ErrInvalidSample = errors.New("invalid sample")
	ErrIO            = errors.New("history i/o error")
	ErrSend          = errors.New("report send failed")
)

// Exit codes returned by the fsgrowth command.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitSampler  = 2
	ExitHistory  = 3
	ExitNotifier = 4
)

// ExitCode returns the appropriate exit code for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrPathNotFound), errors.Is(err, ErrInvalidSample):
		return ExitSampler
	case errors.Is(err, ErrIO):
		return ExitHistory
	case errors.Is(err, ErrSend):
		return ExitNotifier
	default:
		return ExitFailure
	}
}
