package core

import "errors"

var (
	// ErrConfiguration is fatal and raised before any network call.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication is fatal and raised before any fetch.
	ErrAuthentication = errors.New("authentication error")
	// ErrFetch aborts the current run without touching the ledger.
	ErrFetch = errors.New("fetch error")
	// ErrAction affects a single item; the batch continues.
	ErrAction = errors.New("action error")
	// ErrPersistence is logged; reads degrade to an empty ledger.
	ErrPersistence = errors.New("persistence error")
)
