package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"paperlib/internal/model"
	"paperlib/internal/repository"
)

// CollectionName is the Firestore collection holding paper documents.
const CollectionName = "papers"

// paperDoc is the stored shape of a paper. Field names are shared with the web frontend.
type paperDoc struct {
	Title         string    `firestore:"title"`
	Authors       []string  `firestore:"authors"`
	Keywords      []string  `firestore:"keywords"`
	FileName      string    `firestore:"fileName"`
	FileURL       string    `firestore:"fileUrl"`
	FileSize      int64     `firestore:"fileSize"`
	FileType      string    `firestore:"fileType"`
	Summary       string    `firestore:"summary"`
	Abstract      string    `firestore:"abstract"`
	UploadDate    time.Time `firestore:"uploadDate"`
	PreviewCount  int64     `firestore:"previewCount"`
	DownloadCount int64     `firestore:"downloadCount"`
	RatingSum     int64     `firestore:"ratingSum"`
	RatingCount   int64     `firestore:"ratingCount"`
}

func fromPaper(p *model.Paper) paperDoc {
	return paperDoc{
		Title:         p.Title,
		Authors:       nonNil(p.Authors),
		Keywords:      nonNil(p.Keywords),
		FileName:      p.FileName,
		FileURL:       p.FileURL,
		FileSize:      p.FileSize,
		FileType:      p.FileType,
		Summary:       p.Summary,
		Abstract:      p.Abstract,
		UploadDate:    p.UploadDate,
		PreviewCount:  p.PreviewCount,
		DownloadCount: p.DownloadCount,
		RatingSum:     p.RatingSum,
		RatingCount:   p.RatingCount,
	}
}

func (d paperDoc) toPaper(id string) model.Paper {
	return model.Paper{
		ID:            id,
		Title:         d.Title,
		Authors:       nonNil(d.Authors),
		Keywords:      nonNil(d.Keywords),
		FileName:      d.FileName,
		FileURL:       d.FileURL,
		FileSize:      d.FileSize,
		FileType:      d.FileType,
		Summary:       d.Summary,
		Abstract:      d.Abstract,
		UploadDate:    d.UploadDate.UTC(),
		PreviewCount:  d.PreviewCount,
		DownloadCount: d.DownloadCount,
		RatingSum:     d.RatingSum,
		RatingCount:   d.RatingCount,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// PaperFirestore is a Firestore implementation of repository.PaperRepository.
type PaperFirestore struct {
	coll *firestore.CollectionRef
}

// NewPaperFirestore creates a repository over the papers collection.
func NewPaperFirestore(client *firestore.Client) *PaperFirestore {
	return &PaperFirestore{coll: client.Collection(CollectionName)}
}

var _ repository.PaperRepository = (*PaperFirestore)(nil)

// validID rejects ids Firestore would interpret as a path.
func validID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func decode(snap *firestore.DocumentSnapshot) (*model.Paper, error) {
	var d paperDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode paper %s: %w", snap.Ref.ID, err)
	}
	p := d.toPaper(snap.Ref.ID)
	return &p, nil
}

// Create adds a document; Firestore assigns its id.
func (r *PaperFirestore) Create(ctx context.Context, p *model.Paper) (*model.Paper, error) {
	d := fromPaper(p)
	ref, _, err := r.coll.Add(ctx, d)
	if err != nil {
		return nil, err
	}
	out := d.toPaper(ref.ID)
	return &out, nil
}

// FindByID fetches a single paper by document id.
func (r *PaperFirestore) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decode(snap)
}

// FindByFileName returns the first paper whose fileName matches.
func (r *PaperFirestore) FindByFileName(ctx context.Context, fileName string) (*model.Paper, error) {
	snaps, err := r.coll.Where("fileName", "==", fileName).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, repository.ErrNotFound
	}
	return decode(snaps[0])
}

// List runs one page query. Ties on the order field are broken by document id
// so the cursor position is total.
func (r *PaperFirestore) List(ctx context.Context, lq repository.ListQuery) ([]model.Paper, error) {
	field, dir := lq.Effective()
	fsDir := firestore.Desc
	if dir == repository.Asc {
		fsDir = firestore.Asc
	}

	q := r.coll.Query
	if lq.TitlePrefix != "" {
		q = q.Where("title", ">=", lq.TitlePrefix).
			Where("title", "<=", lq.TitlePrefix+repository.PrefixUpperBound)
	}
	q = q.OrderBy(string(field), fsDir).OrderBy(firestore.DocumentID, fsDir)
	if lq.StartAfter != nil {
		q = q.StartAfter(cursorValue(field, lq.StartAfter), lq.StartAfter.ID)
	}

	snaps, err := q.Limit(lq.Limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	items := make([]model.Paper, 0, len(snaps))
	for _, s := range snaps {
		p, err := decode(s)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, nil
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

// UpdateSummary sets the summary field of an existing paper.
func (r *PaperFirestore) UpdateSummary(ctx context.Context, id, summary string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	_, err := r.coll.Doc(id).Update(ctx, []firestore.Update{{Path: "summary", Value: summary}})
	if isNotFound(err) {
		return repository.ErrNotFound
	}
	return err
}

// Delete removes the document. Deleting a missing document succeeds.
func (r *PaperFirestore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	_, err := r.coll.Doc(id).Delete(ctx)
	if isNotFound(err) {
		return nil
	}
	return err
}

// PingContext reads at most one document to confirm the collection is reachable.
func (r *PaperFirestore) PingContext(ctx context.Context) error {
	_, err := r.coll.Limit(1).Documents(ctx).Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}
