package summary

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is what Inspect extracts from a PDF.
type Info struct {
	Pages    int
	Title    string
	Author   string
	Keywords string
}

var disableConfigDir sync.Once

func relaxedConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// Inspect parses and validates rs, returning page count and the document info fields.
// Any parse or validation failure is reported as ErrNotPDF.
func Inspect(rs io.ReadSeeker) (Info, error) {
	ctx, err := api.ReadContext(rs, relaxedConfig())
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	if ctx.PageCount < 1 {
		return Info{}, fmt.Errorf("%w: no pages", ErrNotPDF)
	}
	return Info{
		Pages:    ctx.PageCount,
		Title:    strings.TrimSpace(ctx.Title),
		Author:   strings.TrimSpace(ctx.Author),
		Keywords: strings.TrimSpace(ctx.Keywords),
	}, nil
}

// InspectBytes is Inspect over an in-memory document.
func InspectBytes(b []byte) (Info, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(b, "\x00\t\r\n "), []byte("%PDF-")) {
		return Info{}, fmt.Errorf("%w: missing header", ErrNotPDF)
	}
	return Inspect(bytes.NewReader(b))
}
