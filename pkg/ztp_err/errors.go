// pkg/ztp_err/errors.go

package ztp_err

import (
	"errors"
	"strings"
)

// UserError marks a condition the operator caused or can fix themselves
// (declined a prompt, asked to upgrade a host with no prior install). These
// are reported without stack traces and exit with a distinct code.
type UserError struct {
	cause error
}

func (e *UserError) Error() string { return e.cause.Error() }
func (e *UserError) Unwrap() error { return e.cause }

// NewExpectedError wraps err for softer UX handling. Returns nil for nil.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// NewUserError builds an expected error from a plain message.
func NewUserError(msg string) error {
	return &UserError{cause: errors.New(msg)}
}

// IsExpectedUserError checks whether err is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// ExitCode maps an error to the process exit code: 0 for nil, 2 for user
// errors, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsExpectedUserError(err):
		return 2
	default:
		return 1
	}
}

// ExtractSummary pulls the most diagnostic-looking lines out of captured
// command output, capped at maxCandidates lines.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "no output"
	}

	var candidates []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") ||
			strings.Contains(lower, "failed") ||
			strings.Contains(lower, "cannot") ||
			strings.Contains(lower, "fatal") ||
			strings.Contains(lower, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for _, line := range strings.Split(trimmed, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "unknown error"
}
