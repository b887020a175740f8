package format

import "errors"

var (
	// ErrTruncatedData indicates a read or declared span ran past the end of the buffer.
	ErrTruncatedData = errors.New("format: truncated data")
	// ErrBadMagic indicates the file does not start with the container magic.
	ErrBadMagic = errors.New("format: bad magic")
	// ErrUnsupportedVersion indicates a version outside [MinVersion, MaxVersion].
	ErrUnsupportedVersion = errors.New("format: unsupported version")
	// ErrOutOfOrderChunk indicates a chunk referencing bones appeared before the bone table.
	ErrOutOfOrderChunk = errors.New("format: chunk out of order")
	// ErrLimitExceeded indicates a declared length above the configured sanity ceiling.
	ErrLimitExceeded = errors.New("format: declared size exceeds limit")
	// ErrDecompressionFailed indicates a codec error or a declared/actual size mismatch.
	ErrDecompressionFailed = errors.New("format: decompression failed")
	// ErrInvalidBoneHierarchy indicates a forward, self or out-of-range parent reference.
	ErrInvalidBoneHierarchy = errors.New("format: invalid bone hierarchy")
	// ErrInvalidIndexBuffer indicates a triangle index outside the submesh vertex range.
	ErrInvalidIndexBuffer = errors.New("format: invalid index buffer")
	// ErrInvalidBoneIndex indicates a vertex weight referencing a bone that does not exist.
	ErrInvalidBoneIndex = errors.New("format: invalid bone index")
	// ErrEmptyScene indicates that no submesh survived assembly.
	ErrEmptyScene = errors.New("format: empty scene")
)
