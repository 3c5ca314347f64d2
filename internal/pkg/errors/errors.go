package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input, in
	// particular update/delete calls missing an identifier.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateISBN signals an attempt to register a book whose ISBN is
	// already in the catalog.
	ErrDuplicateISBN = errors.New("isbn already registered")
	// ErrLoanConflict signals an attempt to loan a book that already has an
	// unreturned loan.
	ErrLoanConflict = errors.New("book already loaned")
	// ErrStorageUnavailable wraps storage-level failures (connectivity,
	// timeouts) that the boundary should surface as a 5xx.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
