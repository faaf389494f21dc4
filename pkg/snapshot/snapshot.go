// Package snapshot persists completed analysis results to disk so a pass
// can be re-served after a restart without re-running the pipeline. Each
// pass is one file: a fixed header followed by a snappy-compressed JSON
// record with a CRC32 over the compressed bytes.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/diagram"
	"github.com/ladderflow/ladderflow/pkg/logging"
)

var (
	// ErrNotFound means no snapshot exists for the pass id
	ErrNotFound = errors.New("snapshot not found")
	// ErrChecksumMismatch means the snapshot file is corrupt
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	// ErrBadHeader means the file is not a snapshot or uses an unknown version
	ErrBadHeader = errors.New("bad snapshot header")
)

var snapMagic = []byte{'L', 'F', 'S', 'N'}

const snapVersion uint16 = 1

// DeviceXref is one device's cross-reference entry
type DeviceXref struct {
	Address  string `json:"address"`
	Networks []int  `json:"networks"`
}

// Record is the serializable form of an analysis result
type Record struct {
	PassID      string             `json:"pass_id"`
	CreatedAt   time.Time          `json:"created_at"`
	Networks    int                `json:"networks"`
	Markup      string             `json:"markup"`
	Nodes       []diagram.NodeMeta `json:"nodes"`
	Diagnostics []diag.Diagnostic  `json:"diagnostics"`
	Devices     []DeviceXref       `json:"devices"`
}

// Store writes and reads snapshot files under a single directory
type Store struct {
	dir    string
	logger logging.Logger
}

// NewStore creates the snapshot directory if needed
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// RecordOf flattens an analysis context into its serializable form
func RecordOf(actx *analysis.Context) *Record {
	rec := &Record{
		PassID:      actx.PassID().String(),
		CreatedAt:   actx.CreatedAt(),
		Networks:    actx.NetworkCount(),
		Markup:      actx.Diagram().Markup,
		Nodes:       actx.Diagram().Nodes,
		Diagnostics: actx.Diagnostics(),
	}
	for _, dev := range actx.Devices() {
		ids, _ := actx.DeviceNetworks(dev.Address())
		rec.Devices = append(rec.Devices, DeviceXref{Address: dev.Address(), Networks: ids})
	}
	return rec
}

// Save writes the analysis result and returns the snapshot path
func (s *Store) Save(actx *analysis.Context) (string, error) {
	rec := RecordOf(actx)
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	path := filepath.Join(s.dir, rec.PassID+".snap")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating snapshot file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.Write(snapMagic); err != nil {
		return "", err
	}
	if err := binary.Write(writer, binary.BigEndian, snapVersion); err != nil {
		return "", err
	}
	if err := binary.Write(writer, binary.BigEndian, uint32(len(compressed))); err != nil {
		return "", err
	}
	if _, err := writer.Write(compressed); err != nil {
		return "", err
	}
	if err := binary.Write(writer, binary.BigEndian, crc32.ChecksumIEEE(compressed)); err != nil {
		return "", err
	}
	if err := binary.Write(writer, binary.BigEndian, time.Now().Unix()); err != nil {
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("syncing snapshot: %w", err)
	}

	s.logger.Info("Snapshot saved",
		logging.PassID(rec.PassID),
		logging.String("path", path),
		logging.Int("bytes", len(compressed)))
	return path, nil
}

// Load reads one snapshot by pass id
func (s *Store) Load(passID string) (*Record, error) {
	file, err := os.Open(filepath.Join(s.dir, passID+".snap"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, passID)
		}
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	magic := make([]byte, len(snapMagic))
	if _, err := io.ReadFull(reader, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if string(magic) != string(snapMagic) {
		return nil, fmt.Errorf("%w: wrong magic", ErrBadHeader)
	}
	var version uint16
	if err := binary.Read(reader, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if version != snapVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrBadHeader, version)
	}

	var dataLen uint32
	if err := binary.Read(reader, binary.BigEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("reading snapshot length: %w", err)
	}
	compressed := make([]byte, dataLen)
	if _, err := io.ReadFull(reader, compressed); err != nil {
		return nil, fmt.Errorf("reading snapshot data: %w", err)
	}
	var checksum uint32
	if err := binary.Read(reader, binary.BigEndian, &checksum); err != nil {
		return nil, fmt.Errorf("reading snapshot checksum: %w", err)
	}
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, passID)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return rec, nil
}

// List returns the pass ids of every snapshot in the store
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".snap"); ok {
			ids = append(ids, name)
		}
	}
	return ids, nil
}
