package database

import "errors"

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnknownField = errors.New("unknown query field")
)
