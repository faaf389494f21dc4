package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/ladderflow/ladderflow/pkg/diag"
)

// Archive entries holding network records are named net/<id>.bin. Other
// entries (project metadata, comments files) are ignored.
var netEntryName = regexp.MustCompile(`^net/(\d+)\.bin$`)

// loadArchive extracts network records from a ZIP container. Entry order on
// disk is irrelevant; records are returned in ascending network id order.
func loadArchive(data []byte) (*Result, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptContainer, err)
	}

	result := &Result{}
	seen := make(map[int]bool)

	for _, entry := range reader.File {
		match := netEntryName.FindStringSubmatch(entry.Name)
		if match == nil {
			continue
		}
		id, err := strconv.Atoi(match[1])
		if err != nil || id < 0 {
			result.Diagnostics = append(result.Diagnostics,
				diag.Errorf(diag.SkippedEntry, -1, "entry %q has an invalid network id", entry.Name))
			continue
		}
		if seen[id] {
			result.Diagnostics = append(result.Diagnostics,
				diag.Errorf(diag.SkippedEntry, id, "duplicate record for network %d", id))
			continue
		}

		payload, err := readEntry(entry)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics,
				diag.Errorf(diag.SkippedEntry, id, "entry %q unreadable: %v", entry.Name, err))
			continue
		}

		seen[id] = true
		result.Records = append(result.Records, Record{
			NetworkID: id,
			Payload:   payload,
			Comment:   entry.Comment,
		})
	}

	if len(result.Records) == 0 {
		return nil, ErrEmptyProgram
	}

	slices.SortFunc(result.Records, func(a, b Record) int {
		return a.NetworkID - b.NetworkID
	})
	return result, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
