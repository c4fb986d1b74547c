package export

import (
	"context"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/okorolenko/bookcat/internal/catalog"
	"github.com/okorolenko/bookcat/internal/storage/memory"
)

func sampleSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Log: []string{
			"1;100;A;Иванов И.;2001;АСТ",
			"2;200;B;Петров П.,Иванов И.;2002;ЭКСМО",
		},
		Books: []catalog.Book{
			{ID: "1", Price: 100, Name: "A", Year: 2001, Editor: "АСТ"},
			{ID: "2", Price: 200, Name: "B", Year: 2002, Editor: "ЭКСМО"},
		},
		Authors: []string{"Иванов И.", "Петров П."},
		Editors: []string{"АСТ", "ЭКСМО"},
		Years:   []int{2001, 2002},
		Roles:   []string{"author", "ред"},
		Contributions: []catalog.Contribution{
			{Author: "Иванов И.", BookID: "1", Role: "ред"},
			{Author: "Петров П.", BookID: "2", Role: "author"},
		},
	}
}

func TestExport_WritesAllTables(t *testing.T) {
	t.Parallel()

	store := memory.New()
	exporter, err := New(store, Config{}, nil)
	require.NoError(t, err)

	batch, err := exporter.Export(context.Background(), "run-1", sampleSnapshot())
	require.NoError(t, err)
	require.Len(t, batch.URIs, 7)
	assert.True(t, strings.HasPrefix(batch.Dir, "runs/"))
	assert.Contains(t, batch.Dir, "run-1")

	for _, file := range []string{CatalogFile, BooksFile, YearsFile, AuthorsFile, EditorsFile, RolesFile, AuthorBookRoleFile} {
		_, ok := store.Object(path.Join(batch.Dir, file))
		assert.True(t, ok, "missing table %s", file)
	}

	books, ok := store.Object(path.Join(batch.Dir, BooksFile))
	require.True(t, ok)
	assert.Equal(t,
		"product_id;book_name;product_price;edition_year;editor\n1;A;100;2001;АСТ\n2;B;200;2002;ЭКСМО",
		string(books))

	years, ok := store.Object(path.Join(batch.Dir, YearsFile))
	require.True(t, ok)
	assert.Equal(t, "edition_year\n2001\n2002", string(years))

	links, ok := store.Object(path.Join(batch.Dir, AuthorBookRoleFile))
	require.True(t, ok)
	assert.Equal(t, "author;product_id;role\nИванов И.;1;ред\nПетров П.;2;author", string(links))
}

func TestExport_EmptySnapshotWritesHeadersOnly(t *testing.T) {
	t.Parallel()

	store := memory.New()
	exporter, err := New(store, Config{}, nil)
	require.NoError(t, err)

	batch, err := exporter.Export(context.Background(), "empty", catalog.Snapshot{})
	require.NoError(t, err)

	data, ok := store.Object(path.Join(batch.Dir, CatalogFile))
	require.True(t, ok)
	assert.Equal(t, "product_id;product_price;book_name;authors;edition_year;editor", string(data))
}

func TestExport_Windows1251(t *testing.T) {
	t.Parallel()

	store := memory.New()
	exporter, err := New(store, Config{Encoding: EncodingWindows1251}, nil)
	require.NoError(t, err)

	batch, err := exporter.Export(context.Background(), "cp1251", sampleSnapshot())
	require.NoError(t, err)

	data, ok := store.Object(path.Join(batch.Dir, AuthorsFile))
	require.True(t, ok)

	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	require.NoError(t, err)
	assert.Equal(t, "author\nИванов И.\nПетров П.", string(decoded))
	assert.NotEqual(t, string(data), string(decoded))
}

func TestNew_RejectsUnknownEncoding(t *testing.T) {
	t.Parallel()

	_, err := New(memory.New(), Config{Encoding: "koi8-r"}, nil)
	require.Error(t, err)
}
