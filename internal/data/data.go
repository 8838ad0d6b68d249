// Package data gives access to the reference tables bundled with munsellkit.
// Tables are stored xz-compressed and decompressed on read.
package data

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/munsellkit/internal/security"
)

//go:embed tables/*.csv.xz
var tables embed.FS

const (
	tableDir = "tables"
	tableExt = ".csv.xz"

	// maxTableSize bounds the decompressed size of a table.
	maxTableSize = 16 << 20
)

// ErrUnknownTable is returned when a table name is not bundled.
var ErrUnknownTable = errors.New("data: unknown table")

// Tables lists the bundled table names, sorted.
func Tables() []string {
	entries, err := fs.ReadDir(tables, tableDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), tableExt); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Open returns the decompressed CSV content of the named table.
func Open(name string) (io.ReadCloser, error) {
	if !slices.Contains(Tables(), name) {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownTable, name, strings.Join(Tables(), ", "))
	}

	raw, err := tables.ReadFile(tableDir + "/" + name + tableExt)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}

	xzr, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	return io.NopCloser(security.NewLimitedReader(xzr, maxTableSize)), nil
}
