package vector

import "errors"

var (
	// ErrNotInitialized is returned by every operation of a store whose
	// construction failed or which has been closed.
	ErrNotInitialized = errors.New("vector: store not initialized")

	// ErrDimensionMismatch reports a vector whose length differs from the
	// store dimension.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")

	// ErrInvalidDocument reports a document with an empty id or text, or an
	// embedding holding NaN or Inf.
	ErrInvalidDocument = errors.New("vector: invalid document")

	// ErrSerialization reports a stored embedding that cannot be decoded.
	ErrSerialization = errors.New("vector: embedding serialization failed")

	// ErrStorage wraps failures reported by the database engine.
	ErrStorage = errors.New("vector: storage failure")

	// ErrNotFound is returned by Get for a missing id.
	ErrNotFound = errors.New("vector: document not found")

	// ErrChangeLogDisabled is returned by Changes when the store was built
	// without a change log.
	ErrChangeLogDisabled = errors.New("vector: change log disabled")

	// ErrNearestUnsupported is returned by Nearest on engines without the
	// vector SQL functions.
	ErrNearestUnsupported = errors.New("vector: in-database ranking not supported")
)
