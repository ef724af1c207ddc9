package handler

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"paperlib/internal/model"
)

var validate = newValidator()

// newValidator reports fields by their query or json name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// isoMillis is RFC 3339 in UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// listQuery is the query string of GET /papers.
type listQuery struct {
	QueryType    string `query:"queryType"`
	SearchTerm   string `query:"searchTerm" validate:"max=200"`
	OrderByField string `query:"orderByField" validate:"omitempty,oneof=uploadDate previewCount downloadCount title"`
	Order        string `query:"order" validate:"omitempty,oneof=asc desc"`
	Limit        string `query:"limit"`
	LimitNum     string `query:"limitNum"`
	StartAfterID string `query:"startAfterId" validate:"max=128"`
}

// limit returns the requested page size, or 0 when absent or not a positive integer.
func (q listQuery) limit() int {
	raw := q.LimitNum
	if raw == "" {
		raw = q.Limit
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// signQuery is the query string of GET /generate-upload-url.
type signQuery struct {
	Name        string `query:"name" validate:"required"`
	Method      string `query:"method"`
	Type        string `query:"type" validate:"max=255"`
	Disposition string `query:"disposition"`
}

// proxyQuery is the query string of GET /pdf-proxy.
type proxyQuery struct {
	Name        string `query:"name" validate:"required"`
	Disposition string `query:"disposition"`
}

// deleteRequest is the JSON body of DELETE /delete-paper.
type deleteRequest struct {
	ID       string `json:"id" validate:"required"`
	FileName string `json:"fileName"`
}

// paperJSON is the wire shape of a paper.
type paperJSON struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Keywords      []string `json:"keywords"`
	FileName      string   `json:"fileName"`
	FileURL       string   `json:"fileUrl"`
	FileSize      int64    `json:"fileSize"`
	FileType      string   `json:"fileType"`
	Summary       string   `json:"summary,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	UploadDate    *string  `json:"uploadDate"`
	PreviewCount  int64    `json:"previewCount"`
	DownloadCount int64    `json:"downloadCount"`
	RatingSum     int64    `json:"ratingSum"`
	RatingCount   int64    `json:"ratingCount"`
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(isoMillis)
	return &s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toPaperJSON(p model.Paper) paperJSON {
	return paperJSON{
		ID:            p.ID,
		Title:         p.Title,
		Authors:       orEmpty(p.Authors),
		Keywords:      orEmpty(p.Keywords),
		FileName:      p.FileName,
		FileURL:       p.FileURL,
		FileSize:      p.FileSize,
		FileType:      p.FileType,
		Summary:       p.Summary,
		Abstract:      p.Abstract,
		UploadDate:    formatTime(p.UploadDate),
		PreviewCount:  p.PreviewCount,
		DownloadCount: p.DownloadCount,
		RatingSum:     p.RatingSum,
		RatingCount:   p.RatingCount,
	}
}

func toPaperList(in []model.Paper) []paperJSON {
	out := make([]paperJSON, 0, len(in))
	for _, p := range in {
		out = append(out, toPaperJSON(p))
	}
	return out
}

type listResponse struct {
	Papers        []paperJSON `json:"papers"`
	LastVisibleID *string     `json:"lastVisibleId"`
}

type leaderboardsResponse struct {
	Recent          []paperJSON `json:"recent"`
	PopularPreview  []paperJSON `json:"popularPreview"`
	PopularDownload []paperJSON `json:"popularDownload"`
}

type signResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl,omitempty"`
}

type uploadResponse struct {
	Message    string `json:"message"`
	FileURL    string `json:"fileUrl"`
	UniquePath string `json:"uniquePath"`
	ID         string `json:"id"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}
