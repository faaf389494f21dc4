package container

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
	"golang.org/x/exp/slices"

	"github.com/ladderflow/ladderflow/pkg/diag"
)

// Blob layout:
//
//	header:  magic "GWS2" | version uint16 | flags uint16 | count uint16 | reserved uint16
//	record:  networkID uint16 | payloadLen uint32 | payload
//
// All integers little-endian. Flag bit 0x0001 marks every record payload
// as snappy-compressed.
const (
	blobHeaderSize       = 12
	blobRecordHeaderSize = 6

	blobFlagCompressed = 0x0001
)

// loadBlob extracts network records from a flat binary export
func loadBlob(data []byte) (*Result, error) {
	if len(data) < blobHeaderSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptContainer)
	}

	flags := binary.LittleEndian.Uint16(data[6:])
	count := int(binary.LittleEndian.Uint16(data[8:]))
	if count == 0 {
		return nil, ErrEmptyProgram
	}
	compressed := flags&blobFlagCompressed != 0

	result := &Result{}
	seen := make(map[int]bool)
	offset := blobHeaderSize

	for i := 0; i < count; i++ {
		if len(data)-offset < blobRecordHeaderSize {
			// The remainder cannot be reframed; keep what was readable.
			result.Diagnostics = append(result.Diagnostics,
				diag.Errorf(diag.SkippedEntry, -1,
					"record %d of %d: truncated record header at byte %d", i+1, count, offset))
			break
		}
		id := int(binary.LittleEndian.Uint16(data[offset:]))
		payloadLen := int(binary.LittleEndian.Uint32(data[offset+2:]))
		offset += blobRecordHeaderSize

		if len(data)-offset < payloadLen {
			result.Diagnostics = append(result.Diagnostics,
				diag.Errorf(diag.SkippedEntry, id,
					"record %d of %d: payload truncated at byte %d", i+1, count, offset))
			break
		}
		payload := data[offset : offset+payloadLen]
		offset += payloadLen

		if compressed {
			decoded, err := snappy.Decode(nil, payload)
			if err != nil {
				// Framing is intact, so later records are still readable.
				result.Diagnostics = append(result.Diagnostics,
					diag.Errorf(diag.SkippedEntry, id, "record payload decompression failed: %v", err))
				continue
			}
			payload = decoded
		}

		if seen[id] {
			result.Diagnostics = append(result.Diagnostics,
				diag.Errorf(diag.SkippedEntry, id, "duplicate record for network %d", id))
			continue
		}
		seen[id] = true
		result.Records = append(result.Records, Record{NetworkID: id, Payload: payload})
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%w: no readable records", ErrEmptyProgram)
	}

	slices.SortFunc(result.Records, func(a, b Record) int {
		return a.NetworkID - b.NetworkID
	})
	return result, nil
}
