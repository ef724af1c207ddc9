package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"paperlib/internal/model"
	"paperlib/internal/repository"
)

// PaperPostgres is a PostgreSQL implementation of repository.PaperRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PaperPostgres struct {
	db *sql.DB
}

// NewPaperPostgres creates a new PaperPostgres repository.
func NewPaperPostgres(db *sql.DB) *PaperPostgres {
	return &PaperPostgres{db: db}
}

var _ repository.PaperRepository = (*PaperPostgres)(nil)

const paperColumns = `id, title, authors, keywords, file_name, file_url, file_size, file_type,
		summary, abstract, upload_date, preview_count, download_count, rating_sum, rating_count`

// orderColumns maps sortable fields to their columns. Only these names are ever
// interpolated into SQL.
var orderColumns = map[repository.OrderField]string{
	repository.OrderByUploadDate:    "upload_date",
	repository.OrderByPreviewCount:  "preview_count",
	repository.OrderByDownloadCount: "download_count",
	repository.OrderByTitle:         "title",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*model.Paper, error) {
	var p model.Paper
	var authors, keywords []byte
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&authors,
		&keywords,
		&p.FileName,
		&p.FileURL,
		&p.FileSize,
		&p.FileType,
		&p.Summary,
		&p.Abstract,
		&p.UploadDate,
		&p.PreviewCount,
		&p.DownloadCount,
		&p.RatingSum,
		&p.RatingCount,
	); err != nil {
		return nil, err
	}
	if err := decodeList(authors, &p.Authors); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	if err := decodeList(keywords, &p.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	p.UploadDate = p.UploadDate.UTC()
	return &p, nil
}

func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []string{}
	}
	return nil
}

func encodeList(in []string) (string, error) {
	if in == nil {
		in = []string{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create inserts a new paper row. The database assigns the id.
func (r *PaperPostgres) Create(ctx context.Context, p *model.Paper) (*model.Paper, error) {
	authors, err := encodeList(p.Authors)
	if err != nil {
		return nil, fmt.Errorf("encode authors: %w", err)
	}
	keywords, err := encodeList(p.Keywords)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}
	q := `
		INSERT INTO papers (title, authors, keywords, file_name, file_url, file_size, file_type,
			summary, abstract, upload_date, preview_count, download_count, rating_sum, rating_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + paperColumns
	row := r.db.QueryRowContext(ctx, q,
		p.Title,
		authors,
		keywords,
		p.FileName,
		p.FileURL,
		p.FileSize,
		p.FileType,
		p.Summary,
		p.Abstract,
		p.UploadDate,
		p.PreviewCount,
		p.DownloadCount,
		p.RatingSum,
		p.RatingCount,
	)
	return scanPaper(row)
}

// FindByID fetches a single paper by its ID. Ids that are not UUIDs cannot exist.
func (r *PaperPostgres) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	q := `SELECT ` + paperColumns + ` FROM papers WHERE id = $1`
	p, err := scanPaper(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// FindByFileName fetches the paper stored under the given object key.
func (r *PaperPostgres) FindByFileName(ctx context.Context, fileName string) (*model.Paper, error) {
	q := `SELECT ` + paperColumns + ` FROM papers WHERE file_name = $1`
	p, err := scanPaper(r.db.QueryRowContext(ctx, q, fileName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// List returns one page using keyset pagination on (order column, id).
func (r *PaperPostgres) List(ctx context.Context, lq repository.ListQuery) ([]model.Paper, error) {
	q, args, err := buildListQuery(lq)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Paper, 0, lq.Limit)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func buildListQuery(lq repository.ListQuery) (string, []any, error) {
	field, dir := lq.Effective()
	col, ok := orderColumns[field]
	if !ok {
		return "", nil, fmt.Errorf("unsupported order field %q", field)
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if lq.TitlePrefix != "" {
		where = append(where,
			"title >= "+arg(lq.TitlePrefix),
			"title <= "+arg(lq.TitlePrefix+repository.PrefixUpperBound))
	}
	if lq.StartAfter != nil {
		cmp := "<"
		if dir == repository.Asc {
			cmp = ">"
		}
		where = append(where, fmt.Sprintf("(%s, id) %s (%s, %s)",
			col, cmp, arg(cursorValue(field, lq.StartAfter)), arg(lq.StartAfter.ID)))
	}

	sqlDir := "DESC"
	if dir == repository.Asc {
		sqlDir = "ASC"
	}

	var b strings.Builder
	b.WriteString("SELECT " + paperColumns + " FROM papers")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s LIMIT %s", col, sqlDir, sqlDir, arg(lq.Limit))
	return b.String(), args, nil
}

func cursorValue(field repository.OrderField, p *model.Paper) any {
	switch field {
	case repository.OrderByPreviewCount:
		return p.PreviewCount
	case repository.OrderByDownloadCount:
		return p.DownloadCount
	case repository.OrderByTitle:
		return p.Title
	default:
		return p.UploadDate
	}
}

// UpdateSummary stores a generated summary.
func (r *PaperPostgres) UpdateSummary(ctx context.Context, id, summary string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	const q = `UPDATE papers SET summary = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, summary, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a paper by ID. It does not return an error if the row does not exist.
func (r *PaperPostgres) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	const q = `DELETE FROM papers WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
