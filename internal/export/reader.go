package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/charmap"

	"github.com/okorolenko/bookcat/internal/catalog"
)

// ReadBatch loads an exported batch directory back into a snapshot, so
// a previously harvested run can be pushed into the database without
// re-crawling.
func ReadBatch(dir string, encoding string) (catalog.Snapshot, error) {
	var snap catalog.Snapshot

	books, err := readTable(filepath.Join(dir, BooksFile), encoding, 5)
	if err != nil {
		return snap, err
	}
	for _, row := range books {
		price, _ := strconv.Atoi(row[2])
		year, _ := strconv.Atoi(row[3])
		snap.Books = append(snap.Books, catalog.Book{
			ID:     row[0],
			Name:   row[1],
			Price:  price,
			Year:   year,
			Editor: row[4],
		})
	}

	if snap.Authors, err = readColumn(filepath.Join(dir, AuthorsFile), encoding); err != nil {
		return snap, err
	}
	if snap.Editors, err = readColumn(filepath.Join(dir, EditorsFile), encoding); err != nil {
		return snap, err
	}
	if snap.Roles, err = readColumn(filepath.Join(dir, RolesFile), encoding); err != nil {
		return snap, err
	}

	yearRows, err := readColumn(filepath.Join(dir, YearsFile), encoding)
	if err != nil {
		return snap, err
	}
	for _, raw := range yearRows {
		year, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return snap, fmt.Errorf("year table: bad value %q", raw)
		}
		snap.Years = append(snap.Years, year)
	}

	links, err := readTable(filepath.Join(dir, AuthorBookRoleFile), encoding, 3)
	if err != nil {
		return snap, err
	}
	for _, row := range links {
		snap.Contributions = append(snap.Contributions, catalog.Contribution{
			Author: row[0],
			BookID: row[1],
			Role:   row[2],
		})
	}
	return snap, nil
}

func readColumn(path string, encoding string) ([]string, error) {
	rows, err := readTable(path, encoding, 1)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row[0])
	}
	return values, nil
}

// readTable reads a ';'-separated table file, skipping the header line
// and enforcing a fixed column count.
func readTable(path string, encoding string, columns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	var source io.Reader = f
	if encoding == EncodingWindows1251 {
		source = charmap.Windows1251.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(source)
	reader.Comma = ';'
	reader.FieldsPerRecord = columns
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s has no header", filepath.Base(path))
	}
	return records[1:], nil
}
