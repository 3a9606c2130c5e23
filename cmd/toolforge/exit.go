package main

import "toolforge/internal/domain"

// exitCode maps domain error codes onto process exit codes so scripts
// can tell bad input from upstream trouble.
func exitCode(err error) int {
	code, ok := domain.CodeFrom(err)
	if !ok {
		return 1
	}
	switch code {
	case domain.CodeInvalidArgument:
		return 2
	case domain.CodeNotFound:
		return 3
	case domain.CodeUnavailable, domain.CodeDeadlineExceeded:
		return 4
	case domain.CodeParseError:
		return 5
	default:
		return 1
	}
}
