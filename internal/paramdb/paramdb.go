// Package paramdb loads module and inverter coefficient databases from
// SAM-format CSV files.
//
// The SAM layout is one row per component: the first row names the
// parameters, the next two rows carry units and source annotations and
// are skipped, and the first column of each data row is the component
// name. Non-numeric cells (technology labels, notes) are dropped so an
// entry decodes cleanly into a map of float64 coefficients.
package paramdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned by Get for unknown component names.
var ErrNotFound = errors.New("component not found")

var nameSanitizer = strings.NewReplacer(
	" ", "_", "-", "_", ".", "_", "(", "_", ")", "_",
	"[", "_", "]", "_", ":", "_", "+", "_", "/", "_",
	"\"", "_", ",", "_",
)

// SanitizeName normalizes a component name the way the SAM tooling does,
// replacing separator and punctuation characters with underscores so
// names are safe to use as identifiers and URL path segments.
func SanitizeName(name string) string {
	return nameSanitizer.Replace(name)
}

// Database is an immutable, name-keyed set of component parameter maps.
// It is safe for concurrent reads.
type Database struct {
	entries map[string]map[string]float64
	names   []string
}

// Load reads a SAM CSV database from disk.
func Load(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parameter database: %w", err)
	}
	defer f.Close()

	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse parameter database %s: %w", path, err)
	}
	return db, nil
}

// Parse reads a SAM CSV database from r.
func Parse(r io.Reader) (*Database, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header has %d columns, need at least a name and one parameter", len(header))
	}

	params := make([]string, len(header))
	for i, h := range header {
		params[i] = strings.ReplaceAll(strings.TrimSpace(h), " ", "_")
	}

	entries := make(map[string]map[string]float64)
	var names []string

	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++

		// Rows 2 and 3 are the units and SAM source annotations.
		if row <= 3 {
			continue
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		name := SanitizeName(strings.TrimSpace(record[0]))
		if _, exists := entries[name]; exists {
			return nil, fmt.Errorf("duplicate component name %q", name)
		}

		values := make(map[string]float64)
		for i := 1; i < len(record) && i < len(params); i++ {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				// Technology and note columns are not coefficients.
				continue
			}
			values[params[i]] = v
		}

		entries[name] = values
		names = append(names, name)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("database contains no components")
	}

	sort.Strings(names)
	return &Database{entries: entries, names: names}, nil
}

// Get returns the parameter map for the named component. The name is
// sanitized before lookup so both raw and normalized names resolve.
func (d *Database) Get(name string) (map[string]float64, error) {
	entry, ok := d.entries[SanitizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	// Copy so callers cannot mutate the shared database.
	out := make(map[string]float64, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	return out, nil
}

// Names returns the sorted component names.
func (d *Database) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the number of components.
func (d *Database) Len() int { return len(d.entries) }
