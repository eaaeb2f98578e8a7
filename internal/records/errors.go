package records

import "errors"

var (
	// ErrNoBackend means no company backend id was available to query.
	ErrNoBackend = errors.New("records: no backend id")

	// ErrUnknownView means the view name is not in the catalogue.
	ErrUnknownView = errors.New("records: unknown view")
)
