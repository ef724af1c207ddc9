package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlib/internal/model"
	"paperlib/internal/repository"
)

var paperCols = []string{
	"id", "title", "authors", "keywords", "file_name", "file_url", "file_size", "file_type",
	"summary", "abstract", "upload_date", "preview_count", "download_count", "rating_sum", "rating_count",
}

const (
	idA = "6f1c2a7e-2a59-4c1e-9d6a-0b8f4f7d1a01"
	idB = "6f1c2a7e-2a59-4c1e-9d6a-0b8f4f7d1a02"
)

func paperRow(rows *sqlmock.Rows, id, title string, uploaded time.Time, previews int64) *sqlmock.Rows {
	return rows.AddRow(id, title, []byte(`["Ada Lovelace","Alan Turing"]`), []byte(`["ml"]`),
		"papers/1-abc123-"+title+".pdf", "", 100, "application/pdf", "", "", uploaded, previews, 0, 0, 0)
}

func TestPaperPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	in := &model.Paper{
		Title:      "Attention",
		Authors:    []string{"Ada Lovelace", "Alan Turing"},
		Keywords:   []string{"ml"},
		FileName:   "papers/1-abc123-Attention.pdf",
		FileSize:   100,
		FileType:   "application/pdf",
		UploadDate: now,
	}

	mock.ExpectQuery("INSERT INTO papers").
		WithArgs("Attention", `["Ada Lovelace","Alan Turing"]`, `["ml"]`, in.FileName, "", int64(100),
			"application/pdf", "", "", now, int64(0), int64(0), int64(0), int64(0)).
		WillReturnRows(paperRow(sqlmock.NewRows(paperCols), idA, "Attention", now, 0))

	out, err := repo.Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, idA, out.ID)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, out.Authors)
	assert.Equal(t, []string{"ml"}, out.Keywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM papers WHERE id = ?").
			WithArgs(idA).
			WillReturnRows(paperRow(sqlmock.NewRows(paperCols), idA, "Attention", time.Now(), 3))

		p, err := repo.FindByID(ctx, idA)

		require.NoError(t, err)
		assert.Equal(t, idA, p.ID)
		assert.Equal(t, int64(3), p.PreviewCount)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM papers WHERE id = ?").
			WithArgs(idB).
			WillReturnError(sql.ErrNoRows)

		p, err := repo.FindByID(ctx, idB)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, p)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		p, err := repo.FindByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperPostgres_FindByFileName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaperPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM papers WHERE file_name = ?").
		WithArgs("papers/x.pdf").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByFileName(context.Background(), "papers/x.pdf")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("first page by default order", func(t *testing.T) {
		rows := sqlmock.NewRows(paperCols)
		paperRow(rows, idA, "A", now, 0)
		paperRow(rows, idB, "B", now.Add(-time.Hour), 0)

		mock.ExpectQuery(`SELECT (.+) FROM papers ORDER BY upload_date DESC, id DESC LIMIT \$1`).
			WithArgs(10).
			WillReturnRows(rows)

		items, err := repo.List(ctx, repository.ListQuery{Limit: 10})

		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, idA, items[0].ID)
	})

	t.Run("keyset cursor ascending", func(t *testing.T) {
		cursor := &model.Paper{ID: idA, PreviewCount: 7}
		mock.ExpectQuery(`SELECT (.+) FROM papers WHERE \(preview_count, id\) > \(\$1, \$2\) ORDER BY preview_count ASC, id ASC LIMIT \$3`).
			WithArgs(int64(7), idA, 5).
			WillReturnRows(sqlmock.NewRows(paperCols))

		items, err := repo.List(ctx, repository.ListQuery{
			OrderBy:    repository.OrderByPreviewCount,
			Direction:  repository.Asc,
			Limit:      5,
			StartAfter: cursor,
		})

		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("prefix search ignores requested order", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM papers WHERE title >= \$1 AND title <= \$2 ORDER BY title ASC, id ASC LIMIT \$3`).
			WithArgs("Deep", "Deep"+repository.PrefixUpperBound, 20).
			WillReturnRows(paperRow(sqlmock.NewRows(paperCols), idA, "Deep Learning", now, 0))

		items, err := repo.List(ctx, repository.ListQuery{
			OrderBy:     repository.OrderByDownloadCount,
			Direction:   repository.Desc,
			Limit:       20,
			TitlePrefix: "Deep",
		})

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Deep Learning", items[0].Title)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM papers").WillReturnError(errors.New("boom"))

		_, err := repo.List(ctx, repository.ListQuery{Limit: 1})

		assert.EqualError(t, err, "boom")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperPostgres_UpdateSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE papers SET summary").
		WithArgs("short", idA).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE papers SET summary").
		WithArgs("short", idB).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateSummary(ctx, idA, "short"))
	assert.ErrorIs(t, repo.UpdateSummary(ctx, idB, "short"), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM papers WHERE id = ?").
		WithArgs(idA).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(ctx, idA))
	assert.NoError(t, repo.Delete(ctx, "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
