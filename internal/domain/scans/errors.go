package scans

import "errors"

var (
	// ErrExecutableNotFound aborts an operation before any process is spawned.
	ErrExecutableNotFound = errors.New("gitleaks executable not found")

	// ErrTargetNotFound is returned for file and directory targets that do not exist.
	ErrTargetNotFound = errors.New("scan target not found")

	// ErrReportParse marks a report that could not be decoded. Callers log it
	// and carry on with zero findings.
	ErrReportParse = errors.New("gitleaks report parse failure")
)
