package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNotOwner      = errors.New("review is not owned by actor")
	ErrNotReviewable = errors.New("type is not reviewable")
	ErrTitleTooLong  = errors.New("title too long")
)
