// Package catalog implements the extraction pipeline for paginated book
// catalogs: page parsing, record validation, author/role normalization,
// concurrent page-range scheduling and thread-safe aggregation.
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// RawRecord is one product card as extracted from page markup, before
// validation. All fields are raw strings; a RawRecord lives only until
// the validator has looked at it.
type RawRecord struct {
	ProductID  string
	Price      string
	Name       string
	RawAuthors string
	RawYear    string
	RawEditor  string
}

// Book is a validated catalog entry. The zero-value-comparable struct is
// used directly as a set key, so two books sharing an ID but differing in
// any other field count as distinct entries.
type Book struct {
	ID     string
	Price  int
	Name   string
	Year   int
	Editor string
}

// CatalogRow renders the book as a full catalog CSV row, with the author
// list joined by commas.
func (b Book) CatalogRow(authors []string) string {
	return fmt.Sprintf("%s;%d;%s;%s;%d;%s", b.ID, b.Price, b.Name, strings.Join(authors, ","), b.Year, b.Editor)
}

// BookRow renders the book for the books table.
func (b Book) BookRow() string {
	return fmt.Sprintf("%s;%s;%d;%d;%s", b.ID, b.Name, b.Price, b.Year, b.Editor)
}

// Contribution links a normalized author name to a book in a specific
// role ("author", "сост", "пер", ...).
type Contribution struct {
	Author string
	BookID string
	Role   string
}

// AuthorMention is one normalized author token from a record's raw
// author field, paired with the role extracted from its parenthetical
// annotation (or the sentinel role when none was present).
type AuthorMention struct {
	Author string
	Role   string
}

// PageStatus classifies the outcome of fetching one catalog page.
type PageStatus int

const (
	// PageOK means the page was retrieved and its body is usable.
	PageOK PageStatus = iota
	// PageMissing means the server answered 403 or 404 for the page.
	PageMissing
	// PageFailed means the request failed at the transport level.
	PageFailed
)

// PageOutcome is what a Fetcher reports for a single page request.
type PageOutcome struct {
	Status     PageStatus
	StatusCode int
	Body       []byte
}

// Fetcher retrieves one catalog page. Implementations map HTTP 403/404
// to PageMissing and transport failures to PageFailed; a non-nil error
// is reserved for requests that could not be issued at all.
type Fetcher interface {
	FetchPage(ctx context.Context, baseURL string, page int) (PageOutcome, error)
}

// Source describes one publisher catalog and the page span to harvest.
type Source struct {
	URL       string
	StartPage int
	EndPage   int
}
