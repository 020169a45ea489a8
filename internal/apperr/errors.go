// Package apperr holds the error sentinels shared across the organizer.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrLastLibrary  = errors.New("cannot delete the last library")
	ErrImportParse  = errors.New("unrecognized import data")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)
