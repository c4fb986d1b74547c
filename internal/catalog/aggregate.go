package catalog

import (
	"sort"
	"sync"
)

// Aggregate accumulates deduplicated result sets across all concurrent
// page-range workers. A single mutex guards every structure; insertion
// is idempotent throughout. Entries only ever grow until Finalize runs
// once after all workers have joined.
type Aggregate struct {
	mu            sync.Mutex
	books         map[Book]struct{}
	authors       map[string]struct{}
	editors       map[string]struct{}
	years         map[int]struct{}
	roles         map[string]struct{}
	contributions map[Contribution]struct{}
	log           []string
	finalized     bool
}

// NewAggregate returns an empty Aggregate with the sentinel role
// pre-registered.
func NewAggregate() *Aggregate {
	return &Aggregate{
		books:         make(map[Book]struct{}),
		authors:       make(map[string]struct{}),
		editors:       make(map[string]struct{}),
		years:         make(map[int]struct{}),
		roles:         map[string]struct{}{RoleAuthor: {}},
		contributions: make(map[Contribution]struct{}),
	}
}

// Record inserts one accepted book together with its author mentions
// and any extra role tags whose tokens produced no usable name. The
// catalog log gains one serialized row per call even when the book
// itself was already present.
func (a *Aggregate) Record(book Book, mentions []AuthorMention, extraRoles []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.books[book] = struct{}{}
	a.editors[book.Editor] = struct{}{}
	a.years[book.Year] = struct{}{}
	for _, role := range extraRoles {
		a.roles[role] = struct{}{}
	}

	names := make([]string, 0, len(mentions))
	for _, m := range mentions {
		names = append(names, m.Author)
		a.authors[m.Author] = struct{}{}
		a.roles[m.Role] = struct{}{}
		a.contributions[Contribution{Author: m.Author, BookID: book.ID, Role: m.Role}] = struct{}{}
	}
	a.log = append(a.log, book.CatalogRow(names))
}

// Finalize densifies the year set: every integer between the observed
// minimum and maximum becomes a member, observed or not. It must run
// exactly once, after all workers have joined.
func (a *Aggregate) Finalize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finalized || len(a.years) == 0 {
		a.finalized = true
		return
	}
	minYear, maxYear := 0, 0
	first := true
	for y := range a.years {
		if first || y < minYear {
			minYear = y
		}
		if first || y > maxYear {
			maxYear = y
		}
		first = false
	}
	for y := minYear; y <= maxYear; y++ {
		a.years[y] = struct{}{}
	}
	a.finalized = true
}

// Counts reports current set sizes for progress reporting. Safe to call
// while workers are still running.
func (a *Aggregate) Counts() (books, authors, editors, years, roles, contributions int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.books), len(a.authors), len(a.editors), len(a.years), len(a.roles), len(a.contributions)
}

// Snapshot holds the frozen, sorted aggregate state handed to exporters
// and loaders.
type Snapshot struct {
	Log           []string
	Books         []Book
	Authors       []string
	Editors       []string
	Years         []int
	Roles         []string
	Contributions []Contribution
}

// Snapshot copies the aggregate into sorted slices. Sorting makes the
// output deterministic; insertion order between workers is racy and
// carries no meaning.
func (a *Aggregate) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Log:           append([]string(nil), a.log...),
		Books:         make([]Book, 0, len(a.books)),
		Authors:       make([]string, 0, len(a.authors)),
		Editors:       make([]string, 0, len(a.editors)),
		Years:         make([]int, 0, len(a.years)),
		Roles:         make([]string, 0, len(a.roles)),
		Contributions: make([]Contribution, 0, len(a.contributions)),
	}
	for b := range a.books {
		snap.Books = append(snap.Books, b)
	}
	for name := range a.authors {
		snap.Authors = append(snap.Authors, name)
	}
	for name := range a.editors {
		snap.Editors = append(snap.Editors, name)
	}
	for y := range a.years {
		snap.Years = append(snap.Years, y)
	}
	for role := range a.roles {
		snap.Roles = append(snap.Roles, role)
	}
	for c := range a.contributions {
		snap.Contributions = append(snap.Contributions, c)
	}

	sort.Strings(snap.Log)
	sort.Slice(snap.Books, func(i, j int) bool { return snap.Books[i].BookRow() < snap.Books[j].BookRow() })
	sort.Strings(snap.Authors)
	sort.Strings(snap.Editors)
	sort.Ints(snap.Years)
	sort.Strings(snap.Roles)
	sort.Slice(snap.Contributions, func(i, j int) bool {
		a, b := snap.Contributions[i], snap.Contributions[j]
		if a.Author != b.Author {
			return a.Author < b.Author
		}
		if a.BookID != b.BookID {
			return a.BookID < b.BookID
		}
		return a.Role < b.Role
	})
	return snap
}
