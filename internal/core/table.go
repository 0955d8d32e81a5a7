package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ReadTable parses a comma separated file whose first line is the header.
//
// A path that does not exist yields ok=false with a nil error so callers can
// treat the table as absent. Any other failure wraps ErrReadTable.
func ReadTable(path string) (rows []Row, ok bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrReadTable, err)
	}
	defer f.Close()

	rows, err = parseTable(f)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrReadTable, path, err)
	}
	return rows, true, nil
}

func parseTable(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(wrapSource(r))
	reader.FieldsPerRecord = -1 // Rows may be shorter or longer than the header
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, NewRow(header, record))
	}
	return rows, nil
}
