// Package export serializes a finalized aggregate snapshot into the
// seven catalog tables and writes them through a blob store provider.
package export

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/okorolenko/bookcat/internal/catalog"
	"github.com/okorolenko/bookcat/internal/storage"
)

// Field separators: ';' between columns, ',' inside list-valued columns.
const (
	fieldSep = ";"
	listSep  = ","
)

// Table file names within a batch directory.
const (
	CatalogFile        = "catalog.csv"
	BooksFile          = "books.csv"
	YearsFile          = "years.csv"
	AuthorsFile        = "authors.csv"
	EditorsFile        = "editors.csv"
	RolesFile          = "roles.csv"
	AuthorBookRoleFile = "author_book_role.csv"
)

// Table headers, one per exported file.
const (
	catalogHeader        = "product_id;product_price;book_name;authors;edition_year;editor"
	booksHeader          = "product_id;book_name;product_price;edition_year;editor"
	yearsHeader          = "edition_year"
	authorsHeader        = "author"
	editorsHeader        = "editor"
	rolesHeader          = "role"
	authorBookRoleHeader = "author;product_id;role"
)

// Supported output encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
)

const contentType = "text/csv; charset=utf-8"

// Config controls batch naming and output encoding.
type Config struct {
	// Prefix is the directory prefix for batch paths ("runs" by default).
	Prefix string
	// Encoding is EncodingUTF8 or EncodingWindows1251.
	Encoding string
}

// Exporter writes snapshot tables to a storage provider.
type Exporter struct {
	store  storage.Provider
	cfg    Config
	logger *zap.Logger
}

// New builds an Exporter.
func New(store storage.Provider, cfg Config, logger *zap.Logger) (*Exporter, error) {
	if store == nil {
		return nil, fmt.Errorf("storage provider is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "runs"
	}
	switch cfg.Encoding {
	case "", EncodingUTF8:
		cfg.Encoding = EncodingUTF8
	case EncodingWindows1251:
	default:
		return nil, fmt.Errorf("unsupported export encoding %q", cfg.Encoding)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: store, cfg: cfg, logger: logger}, nil
}

// Batch identifies one exported run.
type Batch struct {
	Dir  string
	URIs []string
}

// Export writes all seven tables for the snapshot under a fresh batch
// directory named after the run. Returns the batch with one URI per
// written table.
func (e *Exporter) Export(ctx context.Context, runID string, snap catalog.Snapshot) (Batch, error) {
	dir := path.Join(e.cfg.Prefix, fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), runID))
	batch := Batch{Dir: dir}

	tables := []struct {
		file   string
		header string
		rows   []string
	}{
		{CatalogFile, catalogHeader, snap.Log},
		{BooksFile, booksHeader, bookRows(snap.Books)},
		{YearsFile, yearsHeader, yearRows(snap.Years)},
		{AuthorsFile, authorsHeader, snap.Authors},
		{EditorsFile, editorsHeader, snap.Editors},
		{RolesFile, rolesHeader, snap.Roles},
		{AuthorBookRoleFile, authorBookRoleHeader, contributionRows(snap.Contributions)},
	}

	for _, table := range tables {
		data, err := e.encode(renderTable(table.header, table.rows))
		if err != nil {
			return Batch{}, fmt.Errorf("encode %s: %w", table.file, err)
		}
		uri, err := e.store.PutObject(ctx, path.Join(dir, table.file), contentType, data)
		if err != nil {
			return Batch{}, fmt.Errorf("write %s: %w", table.file, err)
		}
		batch.URIs = append(batch.URIs, uri)
		e.logger.Debug("table exported",
			zap.String("table", table.file), zap.Int("rows", len(table.rows)), zap.String("uri", uri))
	}
	return batch, nil
}

// renderTable emits the header followed by one line per row.
func renderTable(header string, rows []string) []byte {
	var sb strings.Builder
	sb.WriteString(header)
	for _, row := range rows {
		sb.WriteString("\n")
		sb.WriteString(row)
	}
	return []byte(sb.String())
}

func (e *Exporter) encode(data []byte) ([]byte, error) {
	if e.cfg.Encoding == EncodingUTF8 {
		return data, nil
	}
	encoded, err := charmap.Windows1251.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("windows-1251 encode: %w", err)
	}
	return encoded, nil
}

func bookRows(books []catalog.Book) []string {
	rows := make([]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, b.BookRow())
	}
	return rows
}

func yearRows(years []int) []string {
	rows := make([]string, 0, len(years))
	for _, y := range years {
		rows = append(rows, strconv.Itoa(y))
	}
	return rows
}

func contributionRows(contributions []catalog.Contribution) []string {
	rows := make([]string, 0, len(contributions))
	for _, c := range contributions {
		rows = append(rows, strings.Join([]string{c.Author, c.BookID, c.Role}, fieldSep))
	}
	return rows
}
