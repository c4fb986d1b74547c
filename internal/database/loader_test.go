package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okorolenko/bookcat/internal/catalog"
)

var (
	insertBook = regexp.QuoteMeta(`INSERT INTO books (product_id, name, price, edition_year, editor)`)
	insertLink = regexp.QuoteMeta(`INSERT INTO author_book_roles (author_name, product_id, role_name)`)
)

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	snap := catalog.Snapshot{
		Books: []catalog.Book{
			{ID: "1", Price: 100, Name: "A", Year: 2001, Editor: "АСТ"},
		},
		Authors: []string{"Иванов И."},
		Editors: []string{"АСТ"},
		Years:   []int{2001},
		Roles:   []string{"author", "ред"},
		Contributions: []catalog.Contribution{
			{Author: "Иванов И.", BookID: "1", Role: "ред"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(insertBook).
		WithArgs("1", "A", 100, 2001, "АСТ").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO authors (name)`)).
		WithArgs("Иванов И.").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO editors (name)`)).
		WithArgs("АСТ").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO years (edition_year)`)).
		WithArgs(2001).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO roles (name)`)).
		WithArgs("author").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO roles (name)`)).
		WithArgs("ред").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertLink).
		WithArgs("Иванов И.", "1", "ред").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	loader, err := NewWithPool(mock)
	require.NoError(t, err)

	require.NoError(t, loader.Load(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_LoadEmptySnapshot(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	loader, err := NewWithPool(mock)
	require.NoError(t, err)

	require.NoError(t, loader.Load(context.Background(), catalog.Snapshot{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_RollsBackOnInsertFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertBook).
		WithArgs("1", "A", 100, 2001, "АСТ").
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	loader, err := NewWithPool(mock)
	require.NoError(t, err)

	snap := catalog.Snapshot{Books: []catalog.Book{{ID: "1", Price: 100, Name: "A", Year: 2001, Editor: "АСТ"}}}
	err = loader.Load(context.Background(), snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert book 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_BeginFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	loader, err := NewWithPool(mock)
	require.NoError(t, err)

	err = loader.Load(context.Background(), catalog.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
}

func TestNew_RequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestNewWithPool_RequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewWithPool(nil)
	require.Error(t, err)
}
