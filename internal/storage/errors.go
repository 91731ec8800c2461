package storage

import "errors"

var (
	// ErrMissingTable marks a source table that could not be fetched at
	// all, as opposed to one that returned zero rows.
	ErrMissingTable = errors.New("source table missing")

	// ErrInvalidAlert rejects alert log writes whose rows lack required
	// fields.
	ErrInvalidAlert = errors.New("alert is missing required fields")

	// ErrNoRun means the run log holds no entry for the (name, type) pair.
	ErrNoRun = errors.New("no recorded run")

	// ErrUnknownSource rejects reads of a source kind the schema does not
	// define.
	ErrUnknownSource = errors.New("unknown source kind")
)
