package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidLimit  = errors.New("invalid board limit")
	ErrInvalidScore  = errors.New("invalid board score")
	ErrEmptyCompany  = errors.New("company must not be empty")
	ErrEmptyReportID = errors.New("report id must not be empty")
)
