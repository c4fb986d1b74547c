package catalog

import "errors"

var (
	// ErrInvalidRange means a source's page range has start > end or a
	// negative bound. It is raised before any fetching begins.
	ErrInvalidRange = errors.New("invalid page range")

	// ErrPageUnavailable means a page answered 403/404 while strict mode
	// was requested. In the default mode missing pages silently end a
	// worker's range instead.
	ErrPageUnavailable = errors.New("catalog page unavailable")
)
