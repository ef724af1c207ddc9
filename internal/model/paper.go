package model

import "time"

// Paper is a catalogued academic paper.
// It carries no persistence tags; each store maps it to its own row or document shape.
type Paper struct {
	ID            string
	Title         string
	Authors       []string
	Keywords      []string
	FileName      string // object store key, immutable after creation
	FileURL       string
	FileSize      int64
	FileType      string
	Summary       string
	Abstract      string
	UploadDate    time.Time
	PreviewCount  int64
	DownloadCount int64
	RatingSum     int64
	RatingCount   int64
}

// HasSummary reports whether a summary has already been generated.
func (p *Paper) HasSummary() bool {
	return p.Summary != ""
}

// SummaryOrAbstract returns the generated summary, falling back to the abstract.
func (p *Paper) SummaryOrAbstract() string {
	if p.Summary != "" {
		return p.Summary
	}
	return p.Abstract
}
