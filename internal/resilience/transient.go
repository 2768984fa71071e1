package resilience

import (
	"errors"
	"os/exec"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches failure modes of subprocess invocation
// that tend to clear on their own (resource pressure, signal kills).
// A missing binary or a nonzero exit from the tool itself is permanent:
// rerunning pdftotext against the same broken PDF produces the same result.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	if errors.Is(err, exec.ErrNotFound) {
		return false
	}

	if errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.ENOMEM) ||
		errors.Is(err, syscall.ETXTBSY) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) {
		return true
	}

	// A process killed by a signal (OOM killer, resource limits) is worth
	// one more try. An ordinary nonzero exit is the tool rejecting the input.
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		if ws, ok := exit.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return true
		}
		return false
	}

	// String-based heuristics for errors wrapped past type information.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"resource temporarily unavailable",
		"cannot allocate memory",
		"text file busy",
		"too many open files",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
