package domain

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnreadableFile    = errors.New("file could not be read")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrSearchUnavailable = errors.New("vector search is not configured")
	ErrEmptyQuery        = errors.New("search query must not be empty")
)
