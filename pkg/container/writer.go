package container

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
)

// WriteBlob encodes records into the GWS2 blob layout. When compress is
// set, every payload is snappy-compressed and the header flag bit records
// that. Used by fixture builders.
func WriteBlob(records []Record, compress bool) []byte {
	var flags uint16
	if compress {
		flags = blobFlagCompressed
	}

	var out []byte
	out = append(out, blobMagic...)
	out = binary.LittleEndian.AppendUint16(out, 1) // version
	out = binary.LittleEndian.AppendUint16(out, flags)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(records)))
	out = binary.LittleEndian.AppendUint16(out, 0) // reserved

	for _, rec := range records {
		payload := rec.Payload
		if compress {
			payload = snappy.Encode(nil, payload)
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(rec.NetworkID))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
		out = append(out, payload...)
	}
	return out
}

// WriteArchive encodes records into the ZIP container layout, one
// net/<id>.bin entry per record with the network comment stored as the
// entry comment.
func WriteArchive(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, rec := range records {
		header := &zip.FileHeader{
			Name:    fmt.Sprintf("net/%d.bin", rec.NetworkID),
			Method:  zip.Deflate,
			Comment: rec.Comment,
		}
		entry, err := writer.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create archive entry for network %d: %w", rec.NetworkID, err)
		}
		if _, err := entry.Write(rec.Payload); err != nil {
			return nil, fmt.Errorf("write archive entry for network %d: %w", rec.NetworkID, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
