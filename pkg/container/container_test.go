package container

import (
	"errors"
	"testing"

	"github.com/ladderflow/ladderflow/pkg/diag"
)

func testRecords() []Record {
	return []Record{
		{NetworkID: 1, Payload: []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00}, Comment: "start"},
		{NetworkID: 2, Payload: []byte{0x0B, 0x00, 0x01, 0x00, 0x01, 0x10}, Comment: "output"},
		{NetworkID: 3, Payload: []byte{0x12, 0x00, 0x00, 0x00}, Comment: "end"},
	}
}

// TestLoad_UnsupportedContainer verifies signature probing rejects unknown
// formats regardless of content
func TestLoad_UnsupportedContainer(t *testing.T) {
	_, err := Load([]byte("MZ\x90\x00 not a project artifact"))
	if !errors.Is(err, ErrUnsupportedContainer) {
		t.Fatalf("Expected ErrUnsupportedContainer, got %v", err)
	}
}

// TestLoad_ArchiveRoundTrip writes and reloads a ZIP container
func TestLoad_ArchiveRoundTrip(t *testing.T) {
	data, err := WriteArchive(testRecords())
	if err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	result, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(result.Records))
	}
	for i, want := range testRecords() {
		got := result.Records[i]
		if got.NetworkID != want.NetworkID {
			t.Errorf("Record %d: expected network %d, got %d", i, want.NetworkID, got.NetworkID)
		}
		if got.Comment != want.Comment {
			t.Errorf("Record %d: expected comment %q, got %q", i, want.Comment, got.Comment)
		}
		if string(got.Payload) != string(want.Payload) {
			t.Errorf("Record %d: payload mismatch", i)
		}
	}
}

// TestLoad_ArchiveTruncated verifies a truncated archive is a fatal
// CorruptContainer failure
func TestLoad_ArchiveTruncated(t *testing.T) {
	data, err := WriteArchive(testRecords())
	if err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	_, err = Load(data[:len(data)/2])
	if !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("Expected ErrCorruptContainer, got %v", err)
	}
}

// TestLoad_ArchiveDuplicateEntry verifies duplicates are skipped with a
// diagnostic rather than aborting
func TestLoad_ArchiveDuplicateEntry(t *testing.T) {
	records := testRecords()
	records = append(records, Record{NetworkID: 2, Payload: []byte{0x12, 0x00, 0x00, 0x00}})
	data, err := WriteArchive(records)
	if err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	result, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(result.Records) != 3 {
		t.Errorf("Expected 3 records after duplicate skip, got %d", len(result.Records))
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Kind != diag.SkippedEntry {
		t.Errorf("Expected one SkippedEntry diagnostic, got %v", result.Diagnostics)
	}
}

// TestLoad_BlobRoundTrip covers the flat export layout, plain and compressed
func TestLoad_BlobRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		data := WriteBlob(testRecords(), compress)

		result, err := Load(data)
		if err != nil {
			t.Fatalf("Load(compress=%v) failed: %v", compress, err)
		}
		if len(result.Records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(result.Records))
		}
		for i, want := range testRecords() {
			got := result.Records[i]
			if got.NetworkID != want.NetworkID {
				t.Errorf("Record %d: expected network %d, got %d", i, want.NetworkID, got.NetworkID)
			}
			if string(got.Payload) != string(want.Payload) {
				t.Errorf("Record %d: payload mismatch (compress=%v)", i, compress)
			}
		}
	}
}

// TestLoad_BlobTruncatedTail verifies partial tolerance: readable records
// survive, the truncated tail becomes a diagnostic
func TestLoad_BlobTruncatedTail(t *testing.T) {
	data := WriteBlob(testRecords(), false)

	result, err := Load(data[:len(data)-2])
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("Expected 2 surviving records, got %d", len(result.Records))
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Kind != diag.SkippedEntry {
		t.Errorf("Expected one SkippedEntry diagnostic, got %v", result.Diagnostics)
	}
}

// TestLoad_BlobNothingReadable verifies a blob whose header is intact but
// whose records are all unreadable is an empty program, not corruption
func TestLoad_BlobNothingReadable(t *testing.T) {
	data := WriteBlob(testRecords(), false)

	_, err := Load(data[:blobHeaderSize+3])
	if !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("Expected ErrEmptyProgram, got %v", err)
	}
}

// TestLoad_BlobEmptyProgram verifies a zero-count header is EmptyProgram
func TestLoad_BlobEmptyProgram(t *testing.T) {
	data := WriteBlob(nil, false)

	_, err := Load(data)
	if !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("Expected ErrEmptyProgram, got %v", err)
	}
}

// TestLoad_BlobCorruptCompression verifies a bad snappy payload only skips
// its own record
func TestLoad_BlobCorruptCompression(t *testing.T) {
	records := testRecords()
	data := WriteBlob(records, true)

	// Clobber the first compressed payload in place.
	offset := blobHeaderSize + blobRecordHeaderSize
	for i := 0; i < 4; i++ {
		data[offset+i] ^= 0xFF
	}

	result, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("Expected 2 surviving records, got %d", len(result.Records))
	}
	if len(result.Diagnostics) != 1 {
		t.Errorf("Expected 1 diagnostic, got %d", len(result.Diagnostics))
	}
}
