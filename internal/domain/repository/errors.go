package repository

import "errors"

var (
	// ErrUpstreamTimeout is returned when an upstream call exceeds its deadline.
	ErrUpstreamTimeout = errors.New("upstream timed out")
	// ErrUpstream covers transport failures and non-2xx upstream answers.
	ErrUpstream = errors.New("upstream error")
	// ErrNotFound means the upstream answered but had nothing for the key.
	ErrNotFound = errors.New("not found")
)
