package handlers

import "errors"

var (
	// common error code
	ErrInternalServer = errors.New("INTERNAL_SERVER_ERROR")
	ErrInvalidRequest = errors.New("VALIDATION_FAILED")
	ErrMissingParam   = errors.New("MISSING_PARAM")

	// upstream error code
	ErrUpstream       = errors.New("UPSTREAM_ERROR")
	ErrItemNotFound   = errors.New("ITEM_NOT_FOUND")
	ErrAuthorNotFound = errors.New("AUTHOR_NOT_FOUND")
)
