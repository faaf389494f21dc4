// Package container opens PLC project artifacts and yields the raw
// per-network records inside them. The storage format is probed by
// signature, never by filename: archives open as ZIP, flat exports as the
// GWS2 blob layout. Unreadable entries are skipped with a diagnostic so a
// partially corrupt artifact still produces a usable pass.
package container

import (
	"bytes"
	"errors"

	"github.com/ladderflow/ladderflow/pkg/diag"
)

// Container failure sentinels
var (
	// ErrUnsupportedContainer means the artifact's signature matched no
	// recognized storage format
	ErrUnsupportedContainer = errors.New("unsupported container format")
	// ErrCorruptContainer means the format was recognized but its structure
	// could not be read
	ErrCorruptContainer = errors.New("corrupt container")
	// ErrEmptyProgram means the container held no network records
	ErrEmptyProgram = errors.New("empty program")
)

// Record is one raw network record extracted from a container
type Record struct {
	NetworkID int
	Payload   []byte
	Comment   string
}

// Result is the loader output: records ordered by network id plus the
// diagnostics for anything skipped along the way
type Result struct {
	Records     []Record
	Diagnostics []diag.Diagnostic
}

// Format signatures
var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	blobMagic = []byte{'G', 'W', 'S', '2'}
)

// Load probes the artifact format and extracts its network records.
// Fatal failures are ErrUnsupportedContainer, ErrCorruptContainer, or
// ErrEmptyProgram; partial corruption is reported through Result.Diagnostics
// instead of aborting.
func Load(data []byte) (*Result, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return loadArchive(data)
	case bytes.HasPrefix(data, blobMagic):
		return loadBlob(data)
	default:
		return nil, ErrUnsupportedContainer
	}
}
