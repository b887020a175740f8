package names

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses "hash,name" rows. Hashes are hexadecimal with an optional
// 0x prefix. Blank lines and lines starting with # are ignored.
func ReadCSV(r io.Reader) (map[uint64]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	out := make(map[uint64]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("names: csv: %w", err)
		}
		raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(rec[0])), "0x")
		id, err := strconv.ParseUint(raw, 16, 64)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("names: csv line %d: hash %q: %w", line, rec[0], err)
		}
		out[id] = strings.TrimSpace(rec[1])
	}
}
