// Package jsonl reads and writes journal entries as one JSON object per
// line, the format used by import and dump.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
)

// Record is one importable entry. Analysis fields present in a dump are
// ignored; they are recomputed on import.
type Record struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

// LoadFile reads records from a JSONL file
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses records from r. Malformed or empty lines are skipped with
// a warning; name labels those warnings.
func Read(r io.Reader, name string) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", line, name, err)
			continue
		}
		if strings.TrimSpace(rec.Text) == "" {
			log.Printf("Warning: skipping entry without text at line %d in %s", line, name)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid entries found in %s", name)
	}
	return records, nil
}

// Write emits one JSON object per entry
func Write(w io.Writer, entries []entry.Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
